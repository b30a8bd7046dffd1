package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lotas/ticketdeck/internal/types"
)

// keyOrder sorts by the numeric suffix after the first '-', highest first.
const keyOrder = `CAST(substr(key, instr(key, '-') + 1) AS INTEGER) DESC, key ASC`

// TicketID returns the row id for key, or ErrNotFound.
func TicketID(db *sql.DB, key string) (int64, error) {
	return ticketID(context.Background(), db, key)
}

func ticketID(ctx context.Context, q querier, key string) (int64, error) {
	var id int64
	res, err := Run(ctx, q, SelectOp{
		Query: `SELECT ticket_id FROM tickets WHERE key = ?`,
		Args:  []any{key},
		Scan:  func(r *sql.Rows) error { return r.Scan(&id) },
	})
	if err != nil {
		return 0, fmt.Errorf("select ticket %s: %w", key, err)
	}
	if res.Rows == 0 {
		return 0, ErrNotFound
	}
	return id, nil
}

// FindOrCreateTicket looks a ticket up by key and inserts it if absent.
// It returns 0 and the error when neither the insert nor the follow-up
// lookup yields a row.
func FindOrCreateTicket(db *sql.DB, key string) (int64, error) {
	return findOrCreate(context.Background(), db, key)
}

func findOrCreate(ctx context.Context, q querier, key string) (int64, error) {
	id, err := ticketID(ctx, q, key)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return 0, err
	}
	if _, err := Run(ctx, q, InsertOp{
		Table:   "tickets",
		Columns: []string{"key"},
		Values:  []any{key},
	}); err != nil {
		// A concurrent insert may have won the unique constraint; the
		// re-query below decides.
		id, qerr := ticketID(ctx, q, key)
		if qerr != nil {
			return 0, fmt.Errorf("create ticket %s: %w", key, err)
		}
		return id, nil
	}
	id, err = ticketID(ctx, q, key)
	if err != nil {
		return 0, fmt.Errorf("create ticket %s: %w", key, err)
	}
	return id, nil
}

// UpsertTickets stores every ticket, replacing cached fields for those
// that carry them. Returns how many keys were new to the store.
func UpsertTickets(db *sql.DB, tickets []types.Ticket) (int, error) {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, t := range tickets {
		if t.Key == "" {
			continue
		}
		_, err := ticketID(ctx, tx, t.Key)
		isNew := errors.Is(err, ErrNotFound)
		if err != nil && !isNew {
			return 0, err
		}
		id, err := findOrCreate(ctx, tx, t.Key)
		if err != nil {
			return 0, err
		}
		if isNew {
			added++
		}
		if t.Fields != nil {
			if err := saveFields(ctx, tx, id, t.Fields); err != nil {
				return 0, fmt.Errorf("save fields for %s: %w", t.Key, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return added, nil
}

// SaveTicketFields replaces the cached field map of key. A key with no row
// yields ErrNotFound and nothing is written.
func SaveTicketFields(db *sql.DB, key string, fields map[string]any) error {
	ctx := context.Background()
	id, err := ticketID(ctx, db, key)
	if err != nil {
		return err
	}
	return saveFields(ctx, db, id, fields)
}

func saveFields(ctx context.Context, q querier, id int64, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	_, err = Run(ctx, q, UpdateOp{
		Table:     "tickets",
		Columns:   []string{"fields_json"},
		Values:    []any{string(data)},
		Where:     "ticket_id = ?",
		WhereArgs: []any{id},
	})
	return err
}

// ListTicketKeys returns every stored key in display order.
func ListTicketKeys(db *sql.DB) ([]string, error) {
	var keys []string
	_, err := Run(context.Background(), db, SelectOp{
		Query: `SELECT key FROM tickets ORDER BY ` + keyOrder,
		Scan: func(r *sql.Rows) error {
			var k string
			if err := r.Scan(&k); err != nil {
				return err
			}
			keys = append(keys, k)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list ticket keys: %w", err)
	}
	return keys, nil
}

// ListTickets returns every stored ticket in display order. Tickets with
// no cached fields come back as stubs.
func ListTickets(db *sql.DB) ([]types.Ticket, error) {
	var out []types.Ticket
	_, err := Run(context.Background(), db, SelectOp{
		Query: `SELECT key, fields_json FROM tickets ORDER BY ` + keyOrder,
		Scan: func(r *sql.Rows) error {
			var t types.Ticket
			var raw sql.NullString
			if err := r.Scan(&t.Key, &raw); err != nil {
				return err
			}
			if raw.Valid && raw.String != "" {
				if err := json.Unmarshal([]byte(raw.String), &t.Fields); err != nil {
					// Keep the ticket as a stub; the next search rewrites the cache.
					t.Fields = nil
				}
			}
			out = append(out, t)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return out, nil
}

// GetTicket returns one stored ticket, or ErrNotFound.
func GetTicket(db *sql.DB, key string) (types.Ticket, error) {
	var raw sql.NullString
	err := db.QueryRow(`SELECT fields_json FROM tickets WHERE key = ?`, key).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Ticket{}, ErrNotFound
		}
		return types.Ticket{}, fmt.Errorf("query ticket %s: %w", key, err)
	}
	t := types.Ticket{Key: key}
	if raw.Valid && raw.String != "" {
		if err := json.Unmarshal([]byte(raw.String), &t.Fields); err != nil {
			return t, fmt.Errorf("decode fields for %s: %w", key, err)
		}
	}
	return t, nil
}

// DeleteTicket removes key and, by cascade, its field metadata.
// Returns ErrNotFound if the key is not stored.
func DeleteTicket(db *sql.DB, key string) error {
	res, err := Run(context.Background(), db, DeleteOp{
		Table: "tickets",
		Where: "key = ?",
		Args:  []any{key},
	})
	if err != nil {
		return fmt.Errorf("delete ticket %s: %w", key, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete ticket %s: %w", key, ErrNotFound)
	}
	return nil
}

// TicketCount returns the number of stored tickets.
func TicketCount(db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM tickets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return count, nil
}
