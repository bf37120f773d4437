package controller

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/linkfolio/linkfolio-backend/cache"
	"github.com/linkfolio/linkfolio-backend/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProfileController struct {
	DB     *gorm.DB
	cache  *cache.ProfileCache
	logger *zap.Logger
}

func NewProfileController(db *gorm.DB, profileCache *cache.ProfileCache, logger *zap.Logger) *ProfileController {
	return &ProfileController{DB: db, cache: profileCache, logger: logger}
}

func publicUser(user *models.User) models.PublicUser {
	return models.PublicUser{
		Username:        user.Username,
		DisplayName:     user.DisplayName,
		Bio:             user.Bio,
		AvatarURL:       user.AvatarURL,
		Theme:           user.Theme,
		BackgroundType:  user.BackgroundType,
		BackgroundValue: user.BackgroundValue,
		CustomCSS:       user.CustomCSS,
		Layout:          user.Layout,
		Font:            user.Font,
		ButtonStyle:     user.ButtonStyle,
	}
}

// ResolveProfile returns the visitor-facing projection of a profile: the
// selected user fields plus only the active links in display order. View
// counters are bumped on every resolve, cached or not, since CTR depends
// on them.
func (c *ProfileController) ResolveProfile(ctx context.Context, username string) (*models.PublicProfileResponse, error) {
	if cached, err := c.cache.Get(ctx, username); err == nil {
		c.bumpViewCounts(ctx, username)
		return cached, nil
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Sugar().Errorf("profile cache read failed for %q: %s", username, err.Error())
	}

	var user models.User
	if err := c.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	links := []models.Link{}
	if err := c.DB.WithContext(ctx).
		Where("user_id = ? AND active = ?", user.ID, true).
		Order("display_order ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}

	profile := &models.PublicProfileResponse{
		User:  publicUser(&user),
		Links: links,
	}

	if err := c.cache.Set(ctx, username, profile); err != nil {
		c.logger.Sugar().Errorf("profile cache write failed for %q: %s", username, err.Error())
	}

	c.bumpViewCounts(ctx, username)
	return profile, nil
}

// bumpViewCounts increments view_count on the profile's active links in a
// single UPDATE. Failures are logged only; a lost view is the same
// accepted tradeoff as a lost click.
func (c *ProfileController) bumpViewCounts(ctx context.Context, username string) {
	err := c.DB.WithContext(ctx).Model(&models.Link{}).
		Where("active = ? AND user_id = (?)", true,
			c.DB.Model(&models.User{}).Select("id").Where("username = ?", username)).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		c.logger.Sugar().Errorf("failed to bump view counters for %q: %s", username, err.Error())
	}
}

// UpdateProfile patches display fields on the authenticated user's row.
func (c *ProfileController) UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if len(updates) == 0 {
		return nil, ErrNoFieldsProvided
	}

	return c.applyUserUpdates(ctx, userID, updates)
}

// UpdateDesign patches theme/appearance fields on the authenticated user's row.
func (c *ProfileController) UpdateDesign(ctx context.Context, userID uuid.UUID, req models.UpdateDesignRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.Theme != nil {
		updates["theme"] = *req.Theme
	}
	if req.BackgroundType != nil {
		updates["background_type"] = *req.BackgroundType
	}
	if req.BackgroundValue != nil {
		updates["background_value"] = *req.BackgroundValue
	}
	if req.CustomCSS != nil {
		updates["custom_css"] = *req.CustomCSS
	}
	if req.Layout != nil {
		updates["layout"] = *req.Layout
	}
	if req.Font != nil {
		updates["font"] = *req.Font
	}
	if req.ButtonStyle != nil {
		updates["button_style"] = *req.ButtonStyle
	}
	if len(updates) == 0 {
		return nil, ErrNoFieldsProvided
	}

	return c.applyUserUpdates(ctx, userID, updates)
}

func (c *ProfileController) applyUserUpdates(ctx context.Context, userID uuid.UUID, updates map[string]interface{}) (*models.User, error) {
	result := c.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	var user models.User
	if err := c.DB.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	// Public page must not serve stale design after a mutation.
	if err := c.cache.Invalidate(ctx, user.Username); err != nil {
		c.logger.Sugar().Errorf("profile cache invalidation failed for %q: %s", user.Username, err.Error())
	}

	return &user, nil
}

// InvalidateProfile drops the cached public page; link handlers call this
// after every mutation.
func (c *ProfileController) InvalidateProfile(ctx context.Context, username string) {
	if err := c.cache.Invalidate(ctx, username); err != nil {
		c.logger.Sugar().Errorf("profile cache invalidation failed for %q: %s", username, err.Error())
	}
}
