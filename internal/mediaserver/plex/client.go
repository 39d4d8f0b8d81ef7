package plex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jplandry908/PlexTraktSync/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "plexsync/1.0"
	product        = "plexsync"

	// libraryIdentifier is the plugin identifier Plex expects on rate/scrobble calls
	libraryIdentifier = "com.plexapp.plugins.library"
)

// Client implements domain.Library for a Plex Media Server
type Client struct {
	baseURL    string
	token      string
	clientID   string
	pageSize   int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Plex API client
func NewClient(baseURL, token, clientID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		clientID: clientID,
		pageSize: defaultPageSize,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// SetHTTPClient replaces the HTTP client used for requests
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// SetPageSize sets how many items are requested per page when listing a section
func (c *Client) SetPageSize(n int) {
	c.pageSize = n
}

// doRequest performs an authenticated HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(query) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("X-Plex-Client-Identifier", c.clientID)
	req.Header.Set("X-Plex-Product", product)
	req.Header.Set("X-Plex-Version", "1.0")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("plex request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("plex request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return body, nil
	case http.StatusUnauthorized:
		return nil, domain.ErrAuthFailed
	case http.StatusNotFound:
		return nil, domain.ErrItemNotFound
	default:
		c.logger.Error("plex request error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}

// parseResponse parses a JSON response into a MediaContainer
func (c *Client) parseResponse(body []byte) (*MediaContainer, error) {
	var resp APIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp.MediaContainer, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*MediaContainer, error) {
	body, err := c.doRequest(ctx, http.MethodGet, path, query)
	if err != nil {
		return nil, err
	}
	return c.parseResponse(body)
}

// Sections returns all library sections
func (c *Client) Sections(ctx context.Context) ([]domain.Section, error) {
	container, err := c.get(ctx, "/library/sections", nil)
	if err != nil {
		return nil, err
	}
	return MapSections(c, container.Directory), nil
}

// FetchItem returns a single item by rating key, including its external guids
func (c *Client) FetchItem(ctx context.Context, key string) (domain.Entry, error) {
	query := url.Values{}
	query.Set("includeGuids", "1")

	path := fmt.Sprintf("/library/metadata/%s", url.PathEscape(key))
	container, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	if len(container.Metadata) == 0 {
		return nil, domain.ErrItemNotFound
	}
	return &Item{client: c, meta: container.Metadata[0]}, nil
}

// sectionItems pages through /library/sections/{key}/all
func (c *Client) sectionItems(ctx context.Context, sectionKey string) ([]Metadata, error) {
	path := fmt.Sprintf("/library/sections/%s/all", url.PathEscape(sectionKey))

	items, err := fetchAll(ctx, func(ctx context.Context, offset, limit int) ([]Metadata, int, error) {
		query := url.Values{}
		query.Set("includeGuids", "1")
		query.Set("X-Plex-Container-Start", strconv.Itoa(offset))
		query.Set("X-Plex-Container-Size", strconv.Itoa(limit))

		container, err := c.get(ctx, path, query)
		if err != nil {
			return nil, 0, err
		}

		totalSize := container.TotalSize
		if totalSize == 0 {
			totalSize = container.Size // Fallback if TotalSize not provided
		}
		return container.Metadata, totalSize, nil
	}, c.pageSize)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("listed section", "section", sectionKey, "count", len(items))
	return items, nil
}

// Rate sets the user rating (0-10) of an item
func (c *Client) Rate(ctx context.Context, ratingKey string, rating float64) error {
	query := url.Values{}
	query.Set("key", ratingKey)
	query.Set("identifier", libraryIdentifier)
	query.Set("rating", strconv.FormatFloat(rating, 'f', -1, 64))

	_, err := c.doRequest(ctx, http.MethodPut, "/:/rate", query)
	return err
}

// MarkWatched marks an item as fully watched
func (c *Client) MarkWatched(ctx context.Context, ratingKey string) error {
	query := url.Values{}
	query.Set("key", ratingKey)
	query.Set("identifier", libraryIdentifier)

	_, err := c.doRequest(ctx, http.MethodGet, "/:/scrobble", query)
	return err
}
