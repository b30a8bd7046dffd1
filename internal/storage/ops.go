package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Op is one persistence operation. The concrete types are SelectOp,
// InsertOp, UpdateOp and DeleteOp; Run dispatches on them.
type Op interface{ op() }

// SelectOp runs Query and hands each row to Scan.
type SelectOp struct {
	Query string
	Args  []any
	Scan  func(*sql.Rows) error
}

// InsertOp inserts one row.
type InsertOp struct {
	Table   string
	Columns []string
	Values  []any
}

// UpdateOp sets Columns to Values on rows matching Where.
type UpdateOp struct {
	Table     string
	Columns   []string
	Values    []any
	Where     string
	WhereArgs []any
}

// DeleteOp removes rows matching Where.
type DeleteOp struct {
	Table string
	Where string
	Args  []any
}

func (SelectOp) op() {}
func (InsertOp) op() {}
func (UpdateOp) op() {}
func (DeleteOp) op() {}

// Result reports what a write did. Rows is the number of rows scanned
// for a SelectOp.
type Result struct {
	LastInsertID int64
	RowsAffected int64
	Rows         int
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Run executes op as a single statement. Table and column names come from
// this package, never from user input.
func Run(ctx context.Context, q querier, op Op) (Result, error) {
	switch o := op.(type) {
	case SelectOp:
		rows, err := q.QueryContext(ctx, o.Query, o.Args...)
		if err != nil {
			return Result{}, fmt.Errorf("select: %w", err)
		}
		defer rows.Close()
		var n int
		for rows.Next() {
			if o.Scan != nil {
				if err := o.Scan(rows); err != nil {
					return Result{}, fmt.Errorf("scan: %w", err)
				}
			}
			n++
		}
		if err := rows.Err(); err != nil {
			return Result{}, fmt.Errorf("iterate: %w", err)
		}
		return Result{Rows: n}, nil

	case InsertOp:
		if len(o.Columns) != len(o.Values) {
			return Result{}, fmt.Errorf("insert %s: %d columns, %d values", o.Table, len(o.Columns), len(o.Values))
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(o.Columns)), ", ")
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", o.Table, strings.Join(o.Columns, ", "), marks)
		return exec(ctx, q, "insert "+o.Table, query, o.Values)

	case UpdateOp:
		if len(o.Columns) != len(o.Values) {
			return Result{}, fmt.Errorf("update %s: %d columns, %d values", o.Table, len(o.Columns), len(o.Values))
		}
		sets := make([]string, len(o.Columns))
		for i, c := range o.Columns {
			sets[i] = c + " = ?"
		}
		query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", o.Table, strings.Join(sets, ", "), o.Where)
		return exec(ctx, q, "update "+o.Table, query, append(append([]any{}, o.Values...), o.WhereArgs...))

	case DeleteOp:
		query := fmt.Sprintf("DELETE FROM %s WHERE %s", o.Table, o.Where)
		return exec(ctx, q, "delete "+o.Table, query, o.Args)

	default:
		return Result{}, fmt.Errorf("unsupported op %T", op)
	}
}

func exec(ctx context.Context, q querier, what, query string, args []any) (Result, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", what, err)
	}
	var r Result
	r.LastInsertID, _ = res.LastInsertId()
	r.RowsAffected, _ = res.RowsAffected()
	return r, nil
}
