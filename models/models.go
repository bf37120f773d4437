package models

import (
	"time"

	uuid "github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:30;unique;not null" json:"username"`
	Email        string    `gorm:"unique;not null" json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `gorm:"size:100" json:"displayName"`
	Bio          string    `gorm:"size:500" json:"bio"`
	AvatarURL    string    `json:"avatarUrl"`

	// Design settings rendered by the public profile page.
	Theme           string `gorm:"size:50;default:classic" json:"theme"`
	BackgroundType  string `gorm:"size:20;default:color" json:"backgroundType"`
	BackgroundValue string `json:"backgroundValue"`
	CustomCSS       string `gorm:"type:text" json:"customCss"`
	Layout          string `gorm:"size:20;default:list" json:"layout"`
	Font            string `gorm:"size:50;default:inter" json:"font"`
	ButtonStyle     string `gorm:"size:30;default:rounded" json:"buttonStyle"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Link struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	User   User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	Title     string `gorm:"size:200;not null" json:"title"`
	URL       string `gorm:"not null" json:"url"`
	Icon      string `gorm:"size:50" json:"icon,omitempty"`
	EmbedType string `gorm:"size:20" json:"embedType,omitempty"`

	// Order drives public rendering sequence; only active links are served.
	Order  int  `gorm:"column:display_order;not null;default:0" json:"order"`
	Active bool `gorm:"not null;default:true" json:"active"`

	// Cached Open-Graph metadata for the target URL.
	OGTitle       string     `gorm:"size:300" json:"ogTitle,omitempty"`
	OGDescription string     `gorm:"size:500" json:"ogDescription,omitempty"`
	OGImage       string     `json:"ogImage,omitempty"`
	OGCheckedAt   *time.Time `json:"ogCheckedAt,omitempty"`

	// Denormalized counters; CTR is only as accurate as their update discipline.
	ViewCount  int `gorm:"not null;default:0" json:"viewCount"`
	ClickCount int `gorm:"not null;default:0" json:"clickCount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (l *Link) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Click is append-only; no update or delete path exists.
type Click struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	LinkID uuid.UUID `gorm:"type:uuid;not null;index" json:"linkId"`
	Link   Link      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	// Denormalized owner id for fast per-user aggregation.
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`

	IPAddress string  `gorm:"size:64" json:"ipAddress"`
	Device    string  `gorm:"size:20" json:"device"`
	Browser   string  `gorm:"size:50" json:"browser"`
	OS        string  `gorm:"size:50" json:"os"`
	Referrer  *string `gorm:"size:500" json:"referrer,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}
