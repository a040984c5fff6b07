package domain

import (
	"encoding/json"
	"time"
)

type ProvenanceAction string

const (
	ActionCreated   ProvenanceAction = "created"
	ActionClarified ProvenanceAction = "clarified"
	ActionMoved     ProvenanceAction = "moved"
	ActionUpdated   ProvenanceAction = "updated"
	ActionArchived  ProvenanceAction = "archived"
	ActionEnriched  ProvenanceAction = "enriched"
	ActionCompleted ProvenanceAction = "completed"
	ActionFocused   ProvenanceAction = "focused"
	ActionUnfocused ProvenanceAction = "unfocused"
	ActionRenamed   ProvenanceAction = "renamed"
)

type ProvenanceEntry struct {
	Timestamp string           `json:"timestamp"`
	Action    ProvenanceAction `json:"action"`
	From      *string          `json:"from,omitempty"`
	To        *string          `json:"to,omitempty"`
	Note      *string          `json:"note,omitempty"`
}

// History is an append-only log of provenance entries. The zero value is an
// empty history. There is no way to remove or reorder entries.
type History struct {
	entries []ProvenanceEntry
}

// NewHistory returns a history holding entries in order.
func NewHistory(entries ...ProvenanceEntry) History {
	if len(entries) == 0 {
		return History{}
	}
	return History{entries: append([]ProvenanceEntry(nil), entries...)}
}

// Append returns a new history with e added at the end. The receiver is left
// untouched and shares no storage with the result.
func (h History) Append(e ProvenanceEntry) History {
	next := make([]ProvenanceEntry, len(h.entries), len(h.entries)+1)
	copy(next, h.entries)
	return History{entries: append(next, e)}
}

// Entries returns a copy of the log.
func (h History) Entries() []ProvenanceEntry {
	return append([]ProvenanceEntry(nil), h.entries...)
}

func (h History) Len() int { return len(h.entries) }

// Last returns the most recent entry.
func (h History) Last() (ProvenanceEntry, bool) {
	if len(h.entries) == 0 {
		return ProvenanceEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h History) MarshalJSON() ([]byte, error) {
	if h.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.entries)
}

func (h *History) UnmarshalJSON(data []byte) error {
	var entries []ProvenanceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*h = NewHistory(entries...)
	return nil
}

type Provenance struct {
	CreatedAt  string
	UpdatedAt  string
	ArchivedAt *string
	History    History
}

// Timestamp formats t the way every stored timestamp is written.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// NewProvenance seeds a provenance record with a single created entry.
func NewProvenance(now time.Time) Provenance {
	ts := Timestamp(now)
	return Provenance{
		CreatedAt: ts,
		UpdatedAt: ts,
		History:   NewHistory(ProvenanceEntry{Timestamp: ts, Action: ActionCreated}),
	}
}

// Record appends e, stamping it with now when it has no timestamp, and bumps
// UpdatedAt.
func (p Provenance) Record(now time.Time, e ProvenanceEntry) Provenance {
	ts := Timestamp(now)
	if e.Timestamp == "" {
		e.Timestamp = ts
	}
	p.History = p.History.Append(e)
	p.UpdatedAt = ts
	return p
}

// Archive marks the record archived. Archival never removes anything.
func (p Provenance) Archive(now time.Time, note *string) Provenance {
	ts := Timestamp(now)
	p = p.Record(now, ProvenanceEntry{Timestamp: ts, Action: ActionArchived, Note: note})
	p.ArchivedAt = &ts
	return p
}
