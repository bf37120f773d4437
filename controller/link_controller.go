package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/linkfolio/linkfolio-backend/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LinkController struct {
	DB     *gorm.DB
	logger *zap.Logger
}

func NewLinkController(db *gorm.DB, logger *zap.Logger) *LinkController {
	return &LinkController{DB: db, logger: logger}
}

func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return raw, nil
}

// CreateLink appends a new link at the end of the owner's list.
func (c *LinkController) CreateLink(ctx context.Context, userID uuid.UUID, req models.CreateLinkRequest) (*models.Link, error) {
	url, err := normalizeURL(req.URL)
	if err != nil {
		return nil, err
	}

	var link models.Link
	err = c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// New links render last: next dense order value is the current count.
		var count int64
		if err := tx.Model(&models.Link{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}

		link = models.Link{
			UserID:    userID,
			Title:     req.Title,
			URL:       url,
			Icon:      req.Icon,
			EmbedType: req.EmbedType,
			Order:     int(count),
			Active:    true,
		}
		return tx.Create(&link).Error
	})
	if err != nil {
		c.logger.Sugar().Errorf("failed to create link for user %s: %s", userID, err.Error())
		return nil, err
	}

	return &link, nil
}

// ListLinks returns all of the owner's links in display order, active or not.
func (c *LinkController) ListLinks(ctx context.Context, userID uuid.UUID) ([]models.Link, error) {
	links := []models.Link{}
	if err := c.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("display_order ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (c *LinkController) getOwned(ctx context.Context, userID, linkID uuid.UUID) (*models.Link, error) {
	var link models.Link
	// Every lookup filters on owner id: a cross-user link id is
	// indistinguishable from a missing one.
	if err := c.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", linkID, userID).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

// UpdateLink applies a field patch to an owned link and returns the stored row.
func (c *LinkController) UpdateLink(ctx context.Context, userID, linkID uuid.UUID, patch models.LinkFieldPatch) (*models.Link, error) {
	if patch.Empty() {
		return nil, ErrNoFieldsProvided
	}

	link, err := c.getOwned(ctx, userID, linkID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.URL != nil {
		url, err := normalizeURL(*patch.URL)
		if err != nil {
			return nil, err
		}
		updates["url"] = url
	}
	if patch.Icon != nil {
		updates["icon"] = *patch.Icon
	}
	if patch.Active != nil {
		updates["active"] = *patch.Active
	}
	if patch.EmbedType != nil {
		updates["embed_type"] = *patch.EmbedType
	}

	result := c.DB.WithContext(ctx).Model(&models.Link{}).
		Where("id = ? AND user_id = ?", linkID, userID).
		Updates(updates)
	if result.Error != nil {
		c.logger.Sugar().Errorf("failed to update link %s: %s", linkID, result.Error.Error())
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrLinkNotFound
	}

	return c.getOwned(ctx, userID, link.ID)
}

// DeleteLink removes an owned link and closes the order gap it leaves.
func (c *LinkController) DeleteLink(ctx context.Context, userID, linkID uuid.UUID) error {
	return c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link models.Link
		if err := tx.Where("id = ? AND user_id = ?", linkID, userID).First(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLinkNotFound
			}
			return err
		}

		if err := tx.Delete(&models.Link{}, "id = ? AND user_id = ?", linkID, userID).Error; err != nil {
			return err
		}

		return tx.Model(&models.Link{}).
			Where("user_id = ? AND display_order > ?", userID, link.Order).
			UpdateColumn("display_order", gorm.Expr("display_order - 1")).Error
	})
}

// ReorderLinks rewrites display_order to match the given sequence in one
// transaction: either every link receives its new position or none do.
// The payload must name each of the owner's links exactly once.
func (c *LinkController) ReorderLinks(ctx context.Context, userID uuid.UUID, linkIDs []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(linkIDs))
	for _, id := range linkIDs {
		if _, dup := seen[id]; dup {
			return ErrReorderMismatch
		}
		seen[id] = struct{}{}
	}

	return c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Link{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(linkIDs)) {
			return ErrReorderMismatch
		}

		for position, id := range linkIDs {
			result := tx.Model(&models.Link{}).
				Where("id = ? AND user_id = ?", id, userID).
				UpdateColumn("display_order", position)
			if result.Error != nil {
				return result.Error
			}
			// A zero-row update means a forged or stale id; roll the
			// whole batch back rather than persist a partial permutation.
			if result.RowsAffected == 0 {
				return ErrLinkNotFound
			}
		}
		return nil
	})
}
