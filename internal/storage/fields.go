package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lotas/ticketdeck/internal/types"
)

// ReplaceFieldMeta swaps the stored field descriptors of key for metas in
// one transaction. A key with no row yields ErrNotFound and nothing is
// written.
func ReplaceFieldMeta(db *sql.DB, key string, metas []types.FieldMeta) error {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := ticketID(ctx, tx, key)
	if err != nil {
		return err
	}
	if _, err := Run(ctx, tx, DeleteOp{Table: "fields", Where: "ticket_id = ?", Args: []any{id}}); err != nil {
		return err
	}
	for _, m := range metas {
		allowed := m.AllowedValues
		if allowed == nil {
			allowed = []string{}
		}
		data, err := json.Marshal(allowed)
		if err != nil {
			return fmt.Errorf("marshal allowed values for %s: %w", m.FieldKey, err)
		}
		_, err = Run(ctx, tx, InsertOp{
			Table: "fields",
			Columns: []string{
				"ticket_id", "field_key", "field_name", "field_type",
				"widget_type", "is_editable", "allowed_values", "current_value",
			},
			Values: []any{
				id, m.FieldKey, m.FieldName, m.FieldType,
				m.WidgetType, m.IsEditable, string(data), m.CurrentValue,
			},
		})
		if err != nil {
			return fmt.Errorf("insert field %s: %w", m.FieldKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListFieldMeta returns the stored field descriptors of key ordered by
// field key. An unknown key yields ErrNotFound.
func ListFieldMeta(db *sql.DB, key string) ([]types.FieldMeta, error) {
	ctx := context.Background()
	id, err := ticketID(ctx, db, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("ticket %s: %w", key, ErrNotFound)
		}
		return nil, err
	}

	var out []types.FieldMeta
	_, err = Run(ctx, db, SelectOp{
		Query: `SELECT field_key, field_name, field_type, widget_type, is_editable, allowed_values, current_value
		        FROM fields WHERE ticket_id = ? ORDER BY field_key ASC`,
		Args: []any{id},
		Scan: func(r *sql.Rows) error {
			var m types.FieldMeta
			var allowed string
			if err := r.Scan(&m.FieldKey, &m.FieldName, &m.FieldType, &m.WidgetType,
				&m.IsEditable, &allowed, &m.CurrentValue); err != nil {
				return err
			}
			if err := json.Unmarshal([]byte(allowed), &m.AllowedValues); err != nil {
				m.AllowedValues = nil
			}
			out = append(out, m)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list fields for %s: %w", key, err)
	}
	return out, nil
}

// FieldMetaCount returns how many descriptor rows exist for key's row id.
func FieldMetaCount(db *sql.DB, ticketID int64) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM fields WHERE ticket_id = ?`, ticketID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count fields: %w", err)
	}
	return n, nil
}
