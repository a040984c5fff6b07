package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Senticor-ai/project-sub002/internal/canonid"
	"github.com/Senticor-ai/project-sub002/internal/config"
	"github.com/Senticor-ai/project-sub002/internal/domain"
	"github.com/Senticor-ai/project-sub002/internal/events"
	"github.com/Senticor-ai/project-sub002/internal/jsonld"
	"github.com/Senticor-ai/project-sub002/internal/repo"
)

// Engine implements the item store over SQLite. Payloads are kept as the
// client sent them; the codec is used to check that every stored object is
// still readable and to derive the indexed bucket.
type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Config *config.Config
	Codec  jsonld.Codec
	Logger *slog.Logger
	Now    func() time.Time
}

// ValidationError reports a payload the store refuses to accept.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Record is the store's record wrapper. Item is kept as a generic object so
// keys the codec does not know survive a round trip through the store.
type Record struct {
	ItemID      string         `json:"item_id"`
	CanonicalID string         `json:"canonical_id"`
	Source      string         `json:"source"`
	Item        map[string]any `json:"item"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

func New(db *sql.DB, cfg *config.Config) Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{DB: db},
		Config: cfg,
		Codec:  jsonld.New(cfg.CodecConfig()),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) log() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Decode reads a record through the codec.
func (e Engine) Decode(rec Record) (domain.Entity, error) {
	it, err := toWire(rec.Item)
	if err != nil {
		return nil, err
	}
	return e.Codec.FromJSONLD(jsonld.ItemRecord{
		ItemID:      rec.ItemID,
		CanonicalID: canonid.ID(rec.CanonicalID),
		Source:      rec.Source,
		Item:        it,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}), nil
}

// CreateItemOptions are parameters for storing a new item.
type CreateItemOptions struct {
	Source string
	Item   map[string]any
}

func (e Engine) CreateItem(ctx context.Context, opts CreateItemOptions) (Record, error) {
	if opts.Item == nil {
		return Record{}, ValidationError{Field: "item", Reason: "is required"}
	}
	id, _ := opts.Item["@id"].(string)
	if strings.TrimSpace(id) == "" {
		return Record{}, ValidationError{Field: "@id", Reason: "is required"}
	}
	source := opts.Source
	if source == "" {
		source = "api"
	}
	row, err := e.indexRow(opts.Item)
	if err != nil {
		return Record{}, err
	}
	now := e.now().UTC().Format(time.RFC3339)
	row.ItemID = uuid.NewString()
	row.CanonicalID = id
	row.Source = source
	row.CreatedAt = now
	row.UpdatedAt = now

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertItem(ctx, tx, row); err != nil {
		return Record{}, fmt.Errorf("insert item: %w", err)
	}
	if err := e.Events.Append(ctx, tx, events.ItemCreated, row.ItemID, source, events.EventPayload{
		"canonical_id": row.CanonicalID,
		"type":         row.ItemType,
		"bucket":       row.Bucket,
	}); err != nil {
		return Record{}, err
	}
	if err := tx.Commit(); err != nil {
		return Record{}, err
	}
	e.log().Info("item created", "item_id", row.ItemID, "canonical_id", row.CanonicalID, "type", row.ItemType, "bucket", row.Bucket)
	return recordFromRow(row)
}

// GetItem looks an item up by store id, falling back to its canonical id.
func (e Engine) GetItem(ctx context.Context, id string) (Record, error) {
	row, err := e.Repo.GetItem(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		row, err = e.Repo.GetItemByCanonicalID(ctx, id)
	}
	if err != nil {
		return Record{}, err
	}
	return recordFromRow(row)
}

type ListItemsOptions struct {
	Bucket          string
	Type            string
	IncludeArchived bool
	Limit           int
	Cursor          string
}

type ItemPage struct {
	Items      []Record
	NextCursor string
}

func (e Engine) ListItems(ctx context.Context, opts ListItemsOptions) (ItemPage, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	cursorCreated, cursorID, err := ParseCursor(opts.Cursor)
	if err != nil {
		return ItemPage{}, err
	}
	rows, err := e.Repo.ListItems(ctx, repo.ItemFilters{
		Bucket:          opts.Bucket,
		ItemType:        opts.Type,
		IncludeArchived: opts.IncludeArchived,
		Limit:           limit + 1,
		CursorCreatedAt: cursorCreated,
		CursorID:        cursorID,
	})
	if err != nil {
		return ItemPage{}, err
	}
	page := ItemPage{Items: []Record{}}
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextCursor = ComposeCursor(last.CreatedAt, last.ItemID)
		rows = rows[:limit]
	}
	for _, row := range rows {
		rec, err := recordFromRow(row)
		if err != nil {
			return ItemPage{}, err
		}
		page.Items = append(page.Items, rec)
	}
	return page, nil
}

// PatchItem merges patch into the stored object. Top-level keys replace,
// a null removes the key, and additionalProperty entries are upserted by
// propertyID with a null value removing the entry.
func (e Engine) PatchItem(ctx context.Context, id, source string, patch map[string]any) (Record, error) {
	if len(patch) == 0 {
		return Record{}, ValidationError{Field: "body", Reason: "patch is empty"}
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback()

	row, err := e.Repo.GetItemTx(ctx, tx, id)
	if errors.Is(err, repo.ErrNotFound) {
		row, err = e.Repo.GetItemByCanonicalIDTx(ctx, tx, id)
	}
	if err != nil {
		return Record{}, err
	}
	var current map[string]any
	if err := json.Unmarshal([]byte(row.Payload), &current); err != nil {
		return Record{}, fmt.Errorf("stored item %s: %w", row.ItemID, err)
	}
	if newID, ok := patch["@id"]; ok && newID != row.CanonicalID {
		return Record{}, ValidationError{Field: "@id", Reason: "cannot be changed"}
	}
	merged, err := MergeItem(current, patch)
	if err != nil {
		return Record{}, err
	}
	next, err := e.indexRow(merged)
	if err != nil {
		return Record{}, err
	}
	next.ItemID = row.ItemID
	next.CanonicalID = row.CanonicalID
	next.Source = row.Source
	next.CreatedAt = row.CreatedAt
	next.UpdatedAt = e.now().UTC().Format(time.RFC3339)
	if err := e.Repo.UpdateItem(ctx, tx, next); err != nil {
		return Record{}, err
	}
	if source == "" {
		source = row.Source
	}
	if err := e.Events.Append(ctx, tx, events.ItemPatched, row.ItemID, source, events.EventPayload{
		"keys":        patchKeys(patch),
		"bucket":      next.Bucket,
		"prev_bucket": row.Bucket,
	}); err != nil {
		return Record{}, err
	}
	if err := tx.Commit(); err != nil {
		return Record{}, err
	}
	e.log().Info("item patched", "item_id", next.ItemID, "bucket", next.Bucket, "keys", len(patch))
	return recordFromRow(next)
}

// ItemEvents returns the event log of an item.
func (e Engine) ItemEvents(ctx context.Context, id string, limit int) ([]repo.Event, error) {
	rec, err := e.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.Repo.ListItemEvents(ctx, rec.ItemID, limit)
}

// BucketCounts counts live items per bucket.
func (e Engine) BucketCounts(ctx context.Context) (map[string]int, error) {
	return e.Repo.CountItemsByBucket(ctx)
}

// indexRow checks that obj decodes and derives the indexed columns.
func (e Engine) indexRow(obj map[string]any) (repo.Item, error) {
	it, err := toWire(obj)
	if err != nil {
		return repo.Item{}, err
	}
	if it.Type == "" {
		return repo.Item{}, ValidationError{Field: "@type", Reason: "is required"}
	}
	ent := e.Codec.FromItem(it)
	if !jsonld.IsKnownType(it.Type) {
		e.log().Debug("storing item with unrecognised type", "canonical_id", it.ID, "type", it.Type)
	}
	payload, err := json.Marshal(obj)
	if err != nil {
		return repo.Item{}, err
	}
	return repo.Item{
		ItemType: string(it.Type),
		Bucket:   string(ent.EntityBucket()),
		Payload:  string(payload),
		Archived: ent.Base().Provenance.ArchivedAt != nil,
	}, nil
}

func toWire(obj map[string]any) (jsonld.Item, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return jsonld.Item{}, err
	}
	var it jsonld.Item
	if err := json.Unmarshal(data, &it); err != nil {
		return jsonld.Item{}, ValidationError{Field: "item", Reason: err.Error()}
	}
	return it, nil
}

func recordFromRow(row repo.Item) (Record, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(row.Payload), &obj); err != nil {
		return Record{}, fmt.Errorf("stored item %s: %w", row.ItemID, err)
	}
	return Record{
		ItemID:      row.ItemID,
		CanonicalID: row.CanonicalID,
		Source:      row.Source,
		Item:        obj,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

// MergeItem applies patch to current and returns the merged object. current
// is not modified.
func MergeItem(current, patch map[string]any) (map[string]any, error) {
	merged := make(map[string]any, len(current)+len(patch))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(merged, k)
			continue
		}
		if k != "additionalProperty" {
			merged[k] = v
			continue
		}
		props, err := mergeProperties(merged[k], v)
		if err != nil {
			return nil, err
		}
		if len(props) == 0 {
			delete(merged, k)
		} else {
			merged[k] = props
		}
	}
	return merged, nil
}

func mergeProperties(current, patch any) ([]any, error) {
	patchList, ok := patch.([]any)
	if !ok {
		return nil, ValidationError{Field: "additionalProperty", Reason: "must be array"}
	}
	currentList, _ := current.([]any)
	out := make([]any, 0, len(currentList)+len(patchList))
	index := map[string]int{}
	for _, entry := range currentList {
		if id := propertyID(entry); id != "" {
			index[id] = len(out)
		}
		out = append(out, entry)
	}
	removed := map[int]bool{}
	for _, entry := range patchList {
		id := propertyID(entry)
		if id == "" {
			return nil, ValidationError{Field: "additionalProperty", Reason: "entries need a propertyID"}
		}
		value := entry.(map[string]any)["value"]
		i, exists := index[id]
		switch {
		case value == nil && exists:
			removed[i] = true
		case value == nil:
		case exists:
			out[i] = entry
			delete(removed, i)
		default:
			index[id] = len(out)
			out = append(out, entry)
		}
	}
	if len(removed) == 0 {
		return out, nil
	}
	kept := out[:0:0]
	for i, entry := range out {
		if !removed[i] {
			kept = append(kept, entry)
		}
	}
	return kept, nil
}

func propertyID(entry any) string {
	m, ok := entry.(map[string]any)
	if !ok {
		return ""
	}
	id, _ := m["propertyID"].(string)
	return id
}

// patchKeys lists the top-level keys and property ids a patch touched.
func patchKeys(patch map[string]any) []string {
	keys := make([]string, 0, len(patch))
	for k, v := range patch {
		if k != "additionalProperty" {
			keys = append(keys, k)
			continue
		}
		list, _ := v.([]any)
		for _, entry := range list {
			if id := propertyID(entry); id != "" {
				keys = append(keys, id)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// ParseCursor splits a "created_at|item_id" page cursor.
func ParseCursor(cursor string) (string, string, error) {
	if cursor == "" {
		return "", "", nil
	}
	parts := strings.SplitN(cursor, "|", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ValidationError{Field: "cursor", Reason: "malformed"}
	}
	return parts[0], parts[1], nil
}

func ComposeCursor(ts, id string) string {
	if ts == "" || id == "" {
		return ""
	}
	return ts + "|" + id
}
