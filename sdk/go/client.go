package itemsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Senticor-ai/project-sub002/internal/canonid"
	"github.com/Senticor-ai/project-sub002/internal/domain"
	"github.com/Senticor-ai/project-sub002/internal/jsonld"
)

// Client is a minimal item store HTTP API client.
type Client struct {
	BaseURL     string
	APIKey      string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Timeout:    10 * time.Second,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Record is a stored item. Item is kept raw so keys the codec does not know
// are not lost.
type Record struct {
	ItemID      string          `json:"item_id"`
	CanonicalID string          `json:"canonical_id"`
	Source      string          `json:"source"`
	Item        json.RawMessage `json:"item"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// ItemRecord converts r into the codec's record type.
func (r Record) ItemRecord() (jsonld.ItemRecord, error) {
	var it jsonld.Item
	if len(r.Item) > 0 {
		if err := json.Unmarshal(r.Item, &it); err != nil {
			return jsonld.ItemRecord{}, fmt.Errorf("decode item %s: %w", r.ItemID, err)
		}
	}
	return jsonld.ItemRecord{
		ItemID:      r.ItemID,
		CanonicalID: canonid.ID(r.CanonicalID),
		Source:      r.Source,
		Item:        it,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

// Event represents an item log entry.
type Event struct {
	ID      int64          `json:"id"`
	TS      string         `json:"ts"`
	Type    string         `json:"type"`
	ItemID  string         `json:"item_id"`
	Source  string         `json:"source"`
	Payload map[string]any `json:"payload"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the store.
func IsNotFound(err error) bool {
	ae, ok := err.(*APIError)
	return ok && ae.StatusCode == http.StatusNotFound
}

// PaginatedItems wraps list responses with cursors.
type PaginatedItems struct {
	Items      []Record `json:"items"`
	NextCursor string   `json:"next_cursor"`
}

type ListOptions struct {
	Bucket          string
	Type            string
	IncludeArchived bool
	Limit           int
	Cursor          string
}

// CreateItem stores a new item. item is usually a jsonld.Item.
func (c *Client) CreateItem(ctx context.Context, source string, item any) (Record, error) {
	body := map[string]any{
		"source": source,
		"item":   item,
	}
	var resp Record
	err := c.do(ctx, http.MethodPost, "items", body, &resp)
	return resp, err
}

// GetItem fetches an item by store id or canonical id.
func (c *Client) GetItem(ctx context.Context, itemID string) (Record, error) {
	var resp Record
	err := c.do(ctx, http.MethodGet, "items/"+url.PathEscape(itemID), nil, &resp)
	return resp, err
}

// ListItems returns one page of items.
func (c *Client) ListItems(ctx context.Context, opts ListOptions) (PaginatedItems, error) {
	q := url.Values{}
	if opts.Bucket != "" {
		q.Set("bucket", opts.Bucket)
	}
	if opts.Type != "" {
		q.Set("type", opts.Type)
	}
	if opts.IncludeArchived {
		q.Set("include_archived", "true")
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		q.Set("cursor", opts.Cursor)
	}
	endpoint := "items"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp PaginatedItems
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// PatchItem sends a partial object built by the codec's patch builders.
func (c *Client) PatchItem(ctx context.Context, itemID string, patch any) (Record, error) {
	var resp Record
	err := c.do(ctx, http.MethodPatch, "items/"+url.PathEscape(itemID), patch, &resp)
	return resp, err
}

// ArchiveItem archives an action item with an optional note.
func (c *Client) ArchiveItem(ctx context.Context, codec jsonld.Codec, itemID string, item *domain.ActionItem, note *string) (Record, error) {
	patch, err := codec.BuildTriagePatch(item, jsonld.Triage{Target: jsonld.TriageArchive, Note: note})
	if err != nil {
		return Record{}, err
	}
	return c.PatchItem(ctx, itemID, patch)
}

// ItemEvents returns the change log of an item.
func (c *Client) ItemEvents(ctx context.Context, itemID string, limit int) ([]Event, error) {
	endpoint := fmt.Sprintf("items/%s/events", url.PathEscape(itemID))
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var resp []Event
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.APIKey != "":
		req.Header.Set("X-Api-Key", c.APIKey)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
