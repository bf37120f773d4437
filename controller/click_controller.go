package controller

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/linkfolio/linkfolio-backend/models"
	"github.com/linkfolio/linkfolio-backend/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClickController owns the ingestion and aggregation sides of the click
// pipeline. Aggregations are pure reads with no memoization: repeated
// dashboard refreshes re-run the GROUP BYs.
type ClickController struct {
	DB     *gorm.DB
	logger *zap.Logger
}

func NewClickController(db *gorm.DB, logger *zap.Logger) *ClickController {
	return &ClickController{DB: db, logger: logger}
}

// ClickMeta is the request-derived enrichment stored on every click row.
type ClickMeta struct {
	IPAddress string
	Device    string
	Browser   string
	OS        string
	Referrer  *string
}

// RecordClick validates that linkID belongs to the named profile's user,
// then appends a click row and bumps the link's denormalized counter.
// Cross-user link ids surface as not-found, never as a different error.
func (c *ClickController) RecordClick(ctx context.Context, username string, linkID uuid.UUID, meta ClickMeta) error {
	var user models.User
	if err := c.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link models.Link
		if err := tx.Where("id = ? AND user_id = ?", linkID, user.ID).First(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLinkNotFound
			}
			return err
		}

		click := models.Click{
			LinkID:    link.ID,
			UserID:    user.ID,
			IPAddress: meta.IPAddress,
			Device:    meta.Device,
			Browser:   meta.Browser,
			OS:        meta.OS,
			Referrer:  meta.Referrer,
		}
		if err := tx.Create(&click).Error; err != nil {
			return err
		}

		// UpdateColumn: the counter bump must not touch updated_at or any
		// other link field.
		return tx.Model(&models.Link{}).
			Where("id = ?", link.ID).
			UpdateColumn("click_count", gorm.Expr("click_count + 1")).Error
	})
}

// windowStart converts a lookback in days into the window's lower bound.
func windowStart(days int) time.Time {
	if days <= 0 {
		days = util.DefaultAnalyticsWindowDays
	}
	return time.Now().AddDate(0, 0, -days)
}

// dateExpr truncates created_at to a calendar day in SQL so the day
// boundary follows the database server's timezone, not the caller's.
func (c *ClickController) dateExpr() string {
	if c.DB.Dialector.Name() == "postgres" {
		return "to_char(created_at, 'YYYY-MM-DD')"
	}
	return "strftime('%Y-%m-%d', created_at)"
}

func (c *ClickController) hourExpr() string {
	if c.DB.Dialector.Name() == "postgres" {
		return "CAST(EXTRACT(HOUR FROM created_at) AS INTEGER)"
	}
	return "CAST(strftime('%H', created_at) AS INTEGER)"
}

func (c *ClickController) clicksSince(since time.Time, scope string, scopeID uuid.UUID) *gorm.DB {
	return c.DB.Model(&models.Click{}).
		Where(scope+" = ? AND created_at >= ?", scopeID, since)
}

func (c *ClickController) totalClicks(ctx context.Context, since time.Time, scope string, scopeID uuid.UUID) (int64, error) {
	var total int64
	err := c.clicksSince(since, scope, scopeID).WithContext(ctx).Count(&total).Error
	return total, err
}

func (c *ClickController) deviceStats(ctx context.Context, since time.Time, scope string, scopeID uuid.UUID) ([]models.DeviceCount, error) {
	stats := []models.DeviceCount{}
	err := c.clicksSince(since, scope, scopeID).WithContext(ctx).
		Select("COALESCE(NULLIF(device, ''), ?) AS device, COUNT(*) AS count", util.LabelUnknown).
		Group("device").
		Order("count DESC").
		Scan(&stats).Error
	return stats, err
}

func (c *ClickController) browserStats(ctx context.Context, since time.Time, scope string, scopeID uuid.UUID) ([]models.BrowserCount, error) {
	stats := []models.BrowserCount{}
	err := c.clicksSince(since, scope, scopeID).WithContext(ctx).
		Select("COALESCE(NULLIF(browser, ''), ?) AS browser, COUNT(*) AS count", util.LabelUnknown).
		Group("browser").
		Order("count DESC").
		Scan(&stats).Error
	return stats, err
}

func (c *ClickController) referrerStats(ctx context.Context, since time.Time, scope string, scopeID uuid.UUID) ([]models.ReferrerCount, error) {
	stats := []models.ReferrerCount{}
	err := c.clicksSince(since, scope, scopeID).WithContext(ctx).
		Select("COALESCE(NULLIF(referrer, ''), ?) AS referrer, COUNT(*) AS count", util.LabelDirect).
		Group("referrer").
		Order("count DESC").
		Scan(&stats).Error
	return stats, err
}

func (c *ClickController) timeline(ctx context.Context, since time.Time, scope string, scopeID uuid.UUID) ([]models.TimelinePoint, error) {
	points := []models.TimelinePoint{}
	err := c.clicksSince(since, scope, scopeID).WithContext(ctx).
		Select(c.dateExpr() + " AS date, COUNT(*) AS count").
		Group("date").
		Order("date ASC").
		Scan(&points).Error
	return points, err
}

func (c *ClickController) hourlyDistribution(ctx context.Context, since time.Time, linkID uuid.UUID) ([]models.HourCount, error) {
	hours := []models.HourCount{}
	err := c.clicksSince(since, "link_id", linkID).WithContext(ctx).
		Select(c.hourExpr() + " AS hour, COUNT(*) AS count").
		Group("hour").
		Order("hour ASC").
		Scan(&hours).Error
	return hours, err
}

// clicksPerLink counts windowed clicks for every link the user owns,
// including zero rows, in display order.
func (c *ClickController) clicksPerLink(ctx context.Context, since time.Time, userID uuid.UUID) ([]models.LinkClickCount, error) {
	rows := []models.LinkClickCount{}
	err := c.DB.WithContext(ctx).Table("links").
		Select("links.id AS link_id, links.title AS title, COUNT(clicks.id) AS count").
		Joins("LEFT JOIN clicks ON clicks.link_id = links.id AND clicks.created_at >= ?", since).
		Where("links.user_id = ?", userID).
		Group("links.id, links.title, links.display_order").
		Order("links.display_order ASC").
		Scan(&rows).Error
	return rows, err
}

// CTR derives click-through rate from the link's denormalized counters,
// rounded to two decimals; zero views means zero, not a division error.
func CTR(clickCount, viewCount int) float64 {
	if viewCount == 0 {
		return 0
	}
	return math.Round(float64(clickCount)/float64(viewCount)*100*100) / 100
}

// UserAnalytics answers the dashboard's account-wide view for a lookback
// window in days.
func (c *ClickController) UserAnalytics(ctx context.Context, userID uuid.UUID, days int) (*models.UserAnalyticsResponse, error) {
	since := windowStart(days)

	total, err := c.totalClicks(ctx, since, "user_id", userID)
	if err != nil {
		return nil, err
	}
	perLink, err := c.clicksPerLink(ctx, since, userID)
	if err != nil {
		return nil, err
	}
	devices, err := c.deviceStats(ctx, since, "user_id", userID)
	if err != nil {
		return nil, err
	}
	browsers, err := c.browserStats(ctx, since, "user_id", userID)
	if err != nil {
		return nil, err
	}
	points, err := c.timeline(ctx, since, "user_id", userID)
	if err != nil {
		return nil, err
	}

	return &models.UserAnalyticsResponse{
		TotalClicks:   total,
		ClicksPerLink: perLink,
		DeviceStats:   devices,
		BrowserStats:  browsers,
		TimelineData:  points,
	}, nil
}

// LinkAnalytics answers the per-link drill-down, amending the user-level
// shape with referrers, an hourly heatmap and the counter-derived CTR.
// Ownership is checked first so a foreign link id reads as not-found.
func (c *ClickController) LinkAnalytics(ctx context.Context, userID, linkID uuid.UUID, days int) (*models.LinkAnalyticsResponse, error) {
	var link models.Link
	if err := c.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", linkID, userID).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	since := windowStart(days)

	total, err := c.totalClicks(ctx, since, "link_id", linkID)
	if err != nil {
		return nil, err
	}
	devices, err := c.deviceStats(ctx, since, "link_id", linkID)
	if err != nil {
		return nil, err
	}
	browsers, err := c.browserStats(ctx, since, "link_id", linkID)
	if err != nil {
		return nil, err
	}
	referrers, err := c.referrerStats(ctx, since, "link_id", linkID)
	if err != nil {
		return nil, err
	}
	points, err := c.timeline(ctx, since, "link_id", linkID)
	if err != nil {
		return nil, err
	}
	hours, err := c.hourlyDistribution(ctx, since, linkID)
	if err != nil {
		return nil, err
	}

	return &models.LinkAnalyticsResponse{
		TotalClicks:        total,
		DeviceStats:        devices,
		BrowserStats:       browsers,
		ReferrerStats:      referrers,
		TimelineData:       points,
		HourlyDistribution: hours,
		CTR:                CTR(link.ClickCount, link.ViewCount),
	}, nil
}
