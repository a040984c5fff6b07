package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type Repo struct {
	DB *sql.DB
}

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// Item is a stored record. Payload holds the wire object as JSON text;
// ItemType and Bucket are copied out of it for filtering.
type Item struct {
	ItemID      string
	CanonicalID string
	Source      string
	ItemType    string
	Bucket      string
	Payload     string
	Archived    bool
	CreatedAt   string
	UpdatedAt   string
}

type ItemFilters struct {
	Bucket          string
	ItemType        string
	IncludeArchived bool
	Limit           int
	CursorCreatedAt string
	CursorID        string
}

// Event is one row of the item event log.
type Event struct {
	ID      int64
	TS      string
	Type    string
	ItemID  string
	Source  string
	Payload string
}

const itemColumns = `item_id,canonical_id,source,item_type,bucket,payload,archived,created_at,updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var it Item
	var archived int
	err := row.Scan(&it.ItemID, &it.CanonicalID, &it.Source, &it.ItemType, &it.Bucket, &it.Payload, &archived, &it.CreatedAt, &it.UpdatedAt)
	if err == sql.ErrNoRows {
		return it, ErrNotFound
	}
	it.Archived = archived != 0
	return it, err
}

func (r Repo) InsertItem(ctx context.Context, tx *sql.Tx, it Item) error {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM items WHERE item_id=? OR canonical_id=?`, it.ItemID, it.CanonicalID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return fmt.Errorf("item %s: %w", it.CanonicalID, ErrDuplicate)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO items(`+itemColumns+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		it.ItemID, it.CanonicalID, it.Source, it.ItemType, it.Bucket, it.Payload, boolInt(it.Archived), it.CreatedAt, it.UpdatedAt)
	return err
}

func (r Repo) UpdateItem(ctx context.Context, tx *sql.Tx, it Item) error {
	res, err := tx.ExecContext(ctx, `UPDATE items SET item_type=?, bucket=?, payload=?, archived=?, updated_at=? WHERE item_id=?`,
		it.ItemType, it.Bucket, it.Payload, boolInt(it.Archived), it.UpdatedAt, it.ItemID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) GetItem(ctx context.Context, itemID string) (Item, error) {
	return scanItem(r.DB.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE item_id=?`, itemID))
}

func (r Repo) GetItemTx(ctx context.Context, tx *sql.Tx, itemID string) (Item, error) {
	return scanItem(tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE item_id=?`, itemID))
}

func (r Repo) GetItemByCanonicalID(ctx context.Context, canonicalID string) (Item, error) {
	return scanItem(r.DB.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE canonical_id=?`, canonicalID))
}

func (r Repo) GetItemByCanonicalIDTx(ctx context.Context, tx *sql.Tx, canonicalID string) (Item, error) {
	return scanItem(tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE canonical_id=?`, canonicalID))
}

// ListItems returns items newest first. The cursor is the created_at and
// item_id of the last row of the previous page.
func (r Repo) ListItems(ctx context.Context, f ItemFilters) ([]Item, error) {
	clauses := []string{"1=1"}
	var args []any
	if f.Bucket != "" {
		clauses = append(clauses, "bucket=?")
		args = append(args, f.Bucket)
	}
	if f.ItemType != "" {
		clauses = append(clauses, "item_type=?")
		args = append(args, f.ItemType)
	}
	if !f.IncludeArchived {
		clauses = append(clauses, "archived=0")
	}
	if f.CursorCreatedAt != "" && f.CursorID != "" {
		clauses = append(clauses, "(created_at < ? OR (created_at = ? AND item_id < ?))")
		args = append(args, f.CursorCreatedAt, f.CursorCreatedAt, f.CursorID)
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY created_at DESC, item_id DESC`
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

// ListItemEvents returns the events of one item in append order.
func (r Repo) ListItemEvents(ctx context.Context, itemID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT id,ts,type,item_id,source,payload FROM item_events WHERE item_id=? ORDER BY id ASC LIMIT ?`, itemID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.ItemID, &e.Source, &e.Payload); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r Repo) CountItemsByBucket(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT bucket, COUNT(1) FROM items WHERE archived=0 GROUP BY bucket`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := map[string]int{}
	for rows.Next() {
		var bucket string
		var n int
		if err := rows.Scan(&bucket, &n); err != nil {
			return nil, err
		}
		res[bucket] = n
	}
	return res, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
