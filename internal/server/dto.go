package server

import (
	"encoding/json"

	"github.com/Senticor-ai/project-sub002/internal/engine"
	"github.com/Senticor-ai/project-sub002/internal/repo"
)

// Request payloads

type CreateItemRequest struct {
	Source string         `json:"source,omitempty" example:"manual"`
	Item   map[string]any `json:"item" jsonschema:"type=object,additionalProperties=true"`
}

// Response payloads

type ItemResponse struct {
	ItemID      string         `json:"item_id"`
	CanonicalID string         `json:"canonical_id" example:"urn:app:inbox:5b0e"`
	Source      string         `json:"source"`
	Item        map[string]any `json:"item"`
	CreatedAt   string         `json:"created_at" format:"date-time"`
	UpdatedAt   string         `json:"updated_at" format:"date-time"`
}

type paginatedItems struct {
	Items      []ItemResponse `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type EventResponse struct {
	ID      int64          `json:"id"`
	TS      string         `json:"ts" format:"date-time"`
	Type    string         `json:"type" example:"item.patched"`
	ItemID  string         `json:"item_id"`
	Source  string         `json:"source"`
	Payload map[string]any `json:"payload"`
}

type BucketCountsResponse struct {
	Counts map[string]int `json:"counts"`
}

func itemResponse(rec engine.Record) ItemResponse {
	return ItemResponse(rec)
}

func mapItems(items []engine.Record) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, rec := range items {
		out = append(out, itemResponse(rec))
	}
	return out
}

func eventResponse(e repo.Event) EventResponse {
	return EventResponse{
		ID:      e.ID,
		TS:      e.TS,
		Type:    e.Type,
		ItemID:  e.ItemID,
		Source:  e.Source,
		Payload: decodeJSONMap(e.Payload),
	}
}

func decodeJSONMap(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}
