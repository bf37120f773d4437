// Package dashboard implements the link-editor client: an HTTP API client
// plus an optimistic mutation coordinator that mirrors every edit into an
// in-memory list before the server confirms it.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/linkfolio/linkfolio-backend/models"
	"go.uber.org/zap"
)

// APIClient is the server surface the coordinator mutates through.
type APIClient interface {
	ListLinks(ctx context.Context) ([]models.Link, error)
	CreateLink(ctx context.Context, req models.CreateLinkRequest) (*models.Link, error)
	UpdateLink(ctx context.Context, id uuid.UUID, patch models.LinkFieldPatch) (*models.Link, error)
	DeleteLink(ctx context.Context, id uuid.UUID) error
	ReorderLinks(ctx context.Context, ids []uuid.UUID) error
}

// HTTPClient talks to the backend API with bearer-token auth.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

func NewHTTPClient(baseURL, token string, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *HTTPClient) ListLinks(ctx context.Context) ([]models.Link, error) {
	var links []models.Link
	if err := c.do(ctx, http.MethodGet, "/api/links", nil, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (c *HTTPClient) CreateLink(ctx context.Context, req models.CreateLinkRequest) (*models.Link, error) {
	var link models.Link
	if err := c.do(ctx, http.MethodPost, "/api/links", req, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *HTTPClient) UpdateLink(ctx context.Context, id uuid.UUID, patch models.LinkFieldPatch) (*models.Link, error) {
	body := models.LinkPatchBody{
		Title:     patch.Title,
		URL:       patch.URL,
		Icon:      patch.Icon,
		Active:    patch.Active,
		EmbedType: patch.EmbedType,
	}

	var link models.Link
	if err := c.do(ctx, http.MethodPatch, "/api/links/"+id.String(), body, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *HTTPClient) DeleteLink(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/links/"+id.String(), nil, nil)
}

func (c *HTTPClient) ReorderLinks(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	return c.do(ctx, http.MethodPatch, "/api/links/"+ids[0].String(), models.LinkPatchBody{LinkIDs: raw}, nil)
}

// TrackClick fires the click beacon without awaiting it: the visitor's
// navigation never waits on tracking, and a failed beacon is only logged.
func (c *HTTPClient) TrackClick(username string, linkID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		body := models.RecordClickRequest{LinkID: linkID.String()}
		if err := c.do(ctx, http.MethodPost, "/api/profiles/"+username+"/clicks", body, nil); err != nil {
			c.logger.Sugar().Debugf("click beacon dropped for %s: %s", linkID, err.Error())
		}
	}()
}
