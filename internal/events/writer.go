package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const (
	ItemCreated = "item.created"
	ItemPatched = "item.patched"
)

type Writer struct {
	DB  *sql.DB
	Now func() time.Time
}

type EventPayload map[string]any

// Append writes one event row inside tx. Rows are never updated or deleted.
func (w Writer) Append(ctx context.Context, tx *sql.Tx, evtType, itemID, source string, payload EventPayload) error {
	if w.Now == nil {
		w.Now = time.Now
	}
	ts := w.Now().UTC().Format(time.RFC3339)
	if payload == nil {
		payload = EventPayload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO item_events(ts,type,item_id,source,payload) VALUES (?,?,?,?,?)`,
		ts, evtType, itemID, source, string(data))
	return err
}
