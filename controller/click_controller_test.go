package controller

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/linkfolio/linkfolio-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordTestClick(t *testing.T, cc *ClickController, username string, linkID uuid.UUID, device string) {
	t.Helper()
	err := cc.RecordClick(context.Background(), username, linkID, ClickMeta{
		IPAddress: "203.0.113.7",
		Device:    device,
		Browser:   "Chrome",
		OS:        "Android",
	})
	require.NoError(t, err)
}

func TestRecordClickPersistsAndCounts(t *testing.T) {
	db := newTestDB(t)
	cc := NewClickController(db, testLogger())
	user := createTestUser(t, db, "alice")
	link := createTestLink(t, db, user, "a", 0)

	ref := "https://twitter.com/"
	err := cc.RecordClick(context.Background(), "alice", link.ID, ClickMeta{
		IPAddress: "203.0.113.7",
		Device:    "mobile",
		Browser:   "Safari",
		OS:        "iOS",
		Referrer:  &ref,
	})
	require.NoError(t, err)

	var click models.Click
	require.NoError(t, db.First(&click, "link_id = ?", link.ID).Error)
	assert.Equal(t, user.ID, click.UserID)
	assert.Equal(t, "mobile", click.Device)
	require.NotNil(t, click.Referrer)
	assert.Equal(t, ref, *click.Referrer)

	var stored models.Link
	require.NoError(t, db.First(&stored, "id = ?", link.ID).Error)
	assert.Equal(t, 1, stored.ClickCount)
}

// Recording a click must only touch click rows and the denormalized
// counter, never the link's active flag or order.
func TestRecordClickDoesNotMutateLinkState(t *testing.T) {
	db := newTestDB(t)
	cc := NewClickController(db, testLogger())
	user := createTestUser(t, db, "alice")
	link := createTestLink(t, db, user, "a", 3)

	recordTestClick(t, cc, "alice", link.ID, "desktop")

	var stored models.Link
	require.NoError(t, db.First(&stored, "id = ?", link.ID).Error)
	assert.True(t, stored.Active)
	assert.Equal(t, 3, stored.Order)
	assert.Equal(t, link.Title, stored.Title)
	assert.Equal(t, link.URL, stored.URL)
}

func TestRecordClickRejectsCrossUserLink(t *testing.T) {
	db := newTestDB(t)
	cc := NewClickController(db, testLogger())
	createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	bobsLink := createTestLink(t, db, bob, "bobs", 0)

	// A linkId owned by another profile reads as not-found, not accepted.
	err := cc.RecordClick(context.Background(), "alice", bobsLink.ID, ClickMeta{Device: "desktop"})
	assert.ErrorIs(t, err, ErrLinkNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Click{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecordClickUnknownProfile(t *testing.T) {
	db := newTestDB(t)
	cc := NewClickController(db, testLogger())

	err := cc.RecordClick(context.Background(), "ghost", uuid.New(), ClickMeta{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// End-to-end scenario: one link, three clicks (mobile, mobile, desktop),
// 30-day window.
func TestUserAnalyticsScenario(t *testing.T) {
	db := newTestDB(t)
	cc := NewClickController(db, testLogger())
	user := createTestUser(t, db, "alice")
	link := createTestLink(t, db, user, "Portfolio", 0)
	other := createTestLink(t, db, user, "Blog", 1)

	recordTestClick(t, cc, "alice", link.ID, "mobile")
	recordTestClick(t, cc, "alice", link.ID, "mobile")
	recordTestClick(t, cc, "alice", link.ID, "desktop")

	analytics, err := cc.UserAnalytics(context.Background(), user.ID, 30)
	require.NoError(t, err)

	assert.Equal(t, int64(3), analytics.TotalClicks)
	assert.Contains(t, analytics.DeviceStats, models.DeviceCount{Device: "mobile", Count: 2})
	assert.Contains(t, analytics.DeviceStats, models.DeviceCount{Device: "desktop", Count: 1})

	// Per-link breakdown zero-fills links without clicks, in display order.
	require.Len(t, analytics.ClicksPerLink, 2)
	assert.Equal(t, models.LinkClickCount{LinkID: link.ID, Title: "Portfolio", Count: 3}, analytics.ClicksPerLink[0])
	assert.Equal(t, models.LinkClickCount{LinkID: other.ID, Title: "Blog", Count: 0}, analytics.ClicksPerLink[1])
}

func TestAnalyticsWindowExcludesOldClicks(t *testing.T) {
	db := newTestDB(t)
	cc := NewClickController(db, testLogger())
	user := createTestUser(t, db, "alice")
	link := createTestLink(t, db, user, "a", 0)

	old := models.Click{
		LinkID:    link.ID,
		UserID:    user.ID,
		Device:    "desktop",
		CreatedAt: time.Now().AddDate(0, 0, -40),
	}
	require.NoError(t, db.Create(&old).Error)
	recordTestClick(t, cc, "alice", link.ID, "desktop")

	analytics, err := cc.UserAnalytics(context.Background(), user.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), analytics.TotalClicks)
}

// Timeline completeness: with at least one click on each of D days the
// timeline holds exactly D ascending entries with no gaps.
func TestTimelineCompleteness(t *testing.T) {
	db := newTestDB(t)
	cc := NewClickController(db, testLogger())
	user := createTestUser(t, db, "alice")
	link := createTestLink(t, db, user, "a", 0)

	// Noon UTC keeps each click inside its calendar day regardless of the
	// timezone the database normalizes timestamps to.
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC)

	const days = 5
	for i := 0; i < days; i++ {
		click := models.Click{
			LinkID:    link.ID,
			UserID:    user.ID,
			Device:    "desktop",
			CreatedAt: today.AddDate(0, 0, -i),
		}
		require.NoError(t, db.Create(&click).Error)
	}

	analytics, err := cc.UserAnalytics(context.Background(), user.ID, 30)
	require.NoError(t, err)

	require.Len(t, analytics.TimelineData, days)
	for i := 1; i < days; i++ {
		prev, cur := analytics.TimelineData[i-1], analytics.TimelineData[i]
		assert.Less(t, prev.Date, cur.Date)

		prevDay, err := time.Parse("2006-01-02", prev.Date)
		require.NoError(t, err)
		curDay, err := time.Parse("2006-01-02", cur.Date)
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, curDay.Sub(prevDay), "timeline has a gap")
	}
	for _, point := range analytics.TimelineData {
		assert.Equal(t, int64(1), point.Count)
	}
}

func TestLinkAnalyticsReferrersAndHours(t *testing.T) {
	db := newTestDB(t)
	cc := NewClickController(db, testLogger())
	user := createTestUser(t, db, "alice")
	link := createTestLink(t, db, user, "a", 0)
	ctx := context.Background()

	ref := "https://news.ycombinator.com/"
	require.NoError(t, cc.RecordClick(ctx, "alice", link.ID, ClickMeta{Device: "desktop", Browser: "Firefox", Referrer: &ref}))
	require.NoError(t, cc.RecordClick(ctx, "alice", link.ID, ClickMeta{Device: "mobile", Browser: "Safari"}))

	analytics, err := cc.LinkAnalytics(ctx, user.ID, link.ID, 30)
	require.NoError(t, err)

	assert.Equal(t, int64(2), analytics.TotalClicks)
	// Missing referrers bucket under "Direct".
	assert.Contains(t, analytics.ReferrerStats, models.ReferrerCount{Referrer: ref, Count: 1})
	assert.Contains(t, analytics.ReferrerStats, models.ReferrerCount{Referrer: "Direct", Count: 1})

	var total int64
	for _, h := range analytics.HourlyDistribution {
		assert.GreaterOrEqual(t, h.Hour, 0)
		assert.LessOrEqual(t, h.Hour, 23)
		total += h.Count
	}
	assert.Equal(t, int64(2), total)
}

func TestLinkAnalyticsOwnershipScoped(t *testing.T) {
	db := newTestDB(t)
	cc := NewClickController(db, testLogger())
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	bobsLink := createTestLink(t, db, bob, "bobs", 0)

	_, err := cc.LinkAnalytics(context.Background(), alice.ID, bobsLink.ID, 30)
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestCTRBounds(t *testing.T) {
	tests := []struct {
		name   string
		clicks int
		views  int
		want   float64
	}{
		{"zero views", 5, 0, 0},
		{"zero clicks", 0, 100, 0},
		{"exact half", 50, 100, 50},
		{"rounds to two decimals", 1, 3, 33.33},
		{"rounds up", 2, 3, 66.67},
		{"over 100 possible", 30, 10, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CTR(tt.clicks, tt.views))
		})
	}
}
