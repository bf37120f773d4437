package models

import uuid "github.com/google/uuid"

// Authentication Request DTOs
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Link DTOs
type CreateLinkRequest struct {
	Title     string `json:"title" binding:"required,max=200"`
	URL       string `json:"url" binding:"required,url"`
	Icon      string `json:"icon,omitempty"`
	EmbedType string `json:"embedType,omitempty"`
}

// LinkPatchBody is the wire shape of PATCH /api/links/:id. The original
// API dispatched on whether linkIds was present; the body is decoded once
// at the boundary into a tagged LinkPatch and nothing downstream sniffs
// field presence again.
type LinkPatchBody struct {
	LinkIDs []string `json:"linkIds,omitempty"`

	Title     *string `json:"title,omitempty"`
	URL       *string `json:"url,omitempty"`
	Icon      *string `json:"icon,omitempty"`
	Active    *bool   `json:"active,omitempty"`
	EmbedType *string `json:"embedType,omitempty"`
}

type PatchKind int

const (
	PatchFields PatchKind = iota
	PatchReorder
)

// LinkFieldPatch carries the subset of fields a dashboard edit may change.
// Nil pointers mean "leave unchanged".
type LinkFieldPatch struct {
	Title     *string
	URL       *string
	Icon      *string
	Active    *bool
	EmbedType *string
}

func (p LinkFieldPatch) Empty() bool {
	return p.Title == nil && p.URL == nil && p.Icon == nil && p.Active == nil && p.EmbedType == nil
}

// LinkPatch is the tagged union the handlers and controllers work with.
type LinkPatch struct {
	Kind    PatchKind
	Fields  LinkFieldPatch
	LinkIDs []uuid.UUID
}

// Patch converts the wire body into its tagged form. The linkIds key wins:
// a body carrying both is treated as a reorder, matching the original API.
func (b *LinkPatchBody) Patch() (LinkPatch, error) {
	if b.LinkIDs != nil {
		ids := make([]uuid.UUID, 0, len(b.LinkIDs))
		for _, raw := range b.LinkIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return LinkPatch{}, err
			}
			ids = append(ids, id)
		}
		return LinkPatch{Kind: PatchReorder, LinkIDs: ids}, nil
	}

	return LinkPatch{
		Kind: PatchFields,
		Fields: LinkFieldPatch{
			Title:     b.Title,
			URL:       b.URL,
			Icon:      b.Icon,
			Active:    b.Active,
			EmbedType: b.EmbedType,
		},
	}, nil
}

// Profile DTOs
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

type UpdateDesignRequest struct {
	Theme           *string `json:"theme,omitempty"`
	BackgroundType  *string `json:"backgroundType,omitempty"`
	BackgroundValue *string `json:"backgroundValue,omitempty"`
	CustomCSS       *string `json:"customCss,omitempty"`
	Layout          *string `json:"layout,omitempty"`
	Font            *string `json:"font,omitempty"`
	ButtonStyle     *string `json:"buttonStyle,omitempty"`
}

// PublicUser is the visitor-facing projection of a User.
type PublicUser struct {
	Username        string `json:"username"`
	DisplayName     string `json:"displayName"`
	Bio             string `json:"bio"`
	AvatarURL       string `json:"avatarUrl"`
	Theme           string `json:"theme"`
	BackgroundType  string `json:"backgroundType"`
	BackgroundValue string `json:"backgroundValue"`
	CustomCSS       string `json:"customCss"`
	Layout          string `json:"layout"`
	Font            string `json:"font"`
	ButtonStyle     string `json:"buttonStyle"`
}

type PublicProfileResponse struct {
	User  PublicUser `json:"user"`
	Links []Link     `json:"links"`
}

// Click DTOs
type RecordClickRequest struct {
	LinkID string `json:"linkId" binding:"required,uuid"`
}

// Analytics response shapes
type LinkClickCount struct {
	LinkID uuid.UUID `json:"linkId"`
	Title  string    `json:"title"`
	Count  int64     `json:"count"`
}

type DeviceCount struct {
	Device string `json:"device"`
	Count  int64  `json:"count"`
}

type BrowserCount struct {
	Browser string `json:"browser"`
	Count   int64  `json:"count"`
}

type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}

type TimelinePoint struct {
	Date  string `json:"date"` // YYYY-MM-DD, DB-server timezone
	Count int64  `json:"count"`
}

type HourCount struct {
	Hour  int   `json:"hour"` // 0-23
	Count int64 `json:"count"`
}

type UserAnalyticsResponse struct {
	TotalClicks   int64            `json:"totalClicks"`
	ClicksPerLink []LinkClickCount `json:"clicksPerLink"`
	DeviceStats   []DeviceCount    `json:"deviceStats"`
	BrowserStats  []BrowserCount   `json:"browserStats"`
	TimelineData  []TimelinePoint  `json:"timelineData"`
}

type LinkAnalyticsResponse struct {
	TotalClicks        int64           `json:"totalClicks"`
	DeviceStats        []DeviceCount   `json:"deviceStats"`
	BrowserStats       []BrowserCount  `json:"browserStats"`
	ReferrerStats      []ReferrerCount `json:"referrerStats"`
	TimelineData       []TimelinePoint `json:"timelineData"`
	HourlyDistribution []HourCount     `json:"hourlyDistribution"`
	CTR                float64         `json:"ctr"`
}
