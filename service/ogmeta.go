package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/linkfolio/linkfolio-backend/models"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"gorm.io/gorm"
)

// OGMetaService fetches Open-Graph metadata for link targets and caches
// it on the link row. Fetches are best-effort: a failure is logged and the
// row keeps whatever it had.
type OGMetaService struct {
	db      *gorm.DB
	logger  *zap.Logger
	client  *http.Client
	maxAge  time.Duration
	maxBody int64
}

func NewOGMetaService(db *gorm.DB, logger *zap.Logger, refreshAfter time.Duration) *OGMetaService {
	return &OGMetaService{
		db:      db,
		logger:  logger,
		client:  &http.Client{Timeout: 10 * time.Second},
		maxAge:  refreshAfter,
		maxBody: 512 * 1024,
	}
}

// OGMeta holds the three tags the public page renders.
type OGMeta struct {
	Title       string
	Description string
	Image       string
}

// Refresh fetches and stores OG metadata for a link if its cache is stale.
// Safe to call from a detached goroutine; it takes its own deadline.
func (s *OGMetaService) Refresh(linkID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var link models.Link
	if err := s.db.WithContext(ctx).First(&link, "id = ?", linkID).Error; err != nil {
		return
	}
	if link.OGCheckedAt != nil && time.Since(*link.OGCheckedAt) < s.maxAge {
		return
	}

	meta, err := s.Fetch(ctx, link.URL)
	now := time.Now()
	updates := map[string]interface{}{"og_checked_at": now}
	if err != nil {
		// Record the attempt so a dead target isn't re-fetched every view.
		s.logger.Sugar().Warnf("og fetch failed for %s: %s", link.URL, err.Error())
	} else {
		updates["og_title"] = truncate(meta.Title, 300)
		updates["og_description"] = truncate(meta.Description, 500)
		updates["og_image"] = meta.Image
	}

	if err := s.db.WithContext(ctx).Model(&models.Link{}).
		Where("id = ?", link.ID).
		UpdateColumns(updates).Error; err != nil {
		s.logger.Sugar().Errorf("failed to store og metadata for link %s: %s", link.ID, err.Error())
	}
}

// Fetch downloads the target page and extracts og:title/og:description/
// og:image, falling back to <title> when og:title is absent.
func (s *OGMetaService) Fetch(ctx context.Context, url string) (*OGMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "linkfolio-bot/1.0 (+https://linkfol.io)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	meta := &OGMeta{}
	var pageTitle string
	tokenizer := html.NewTokenizer(http.MaxBytesReader(nil, resp.Body, s.maxBody))

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF or body limit reached terminates the scan.
			if meta.Title == "" {
				meta.Title = pageTitle
			}
			return meta, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			switch token.Data {
			case "meta":
				property, content := "", ""
				for _, attr := range token.Attr {
					switch attr.Key {
					case "property", "name":
						property = attr.Val
					case "content":
						content = attr.Val
					}
				}
				switch property {
				case "og:title":
					meta.Title = content
				case "og:description", "description":
					if meta.Description == "" || property == "og:description" {
						meta.Description = content
					}
				case "og:image":
					meta.Image = content
				}
			case "title":
				if tokenizer.Next() == html.TextToken {
					pageTitle = strings.TrimSpace(tokenizer.Token().Data)
				}
			case "body":
				// Metadata lives in <head>; stop before page content.
				if meta.Title == "" {
					meta.Title = pageTitle
				}
				return meta, nil
			}
		}
	}
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
