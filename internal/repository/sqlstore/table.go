package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"hbnb/internal/apperrors"
	"hbnb/internal/domain"
)

var metaColumns = []any{"id", "created_at", "updated_at"}

type scanner interface {
	Scan(dest ...any) error
}

// attribute maps a lookup name to a predicate on the table.
type attribute func(d goqu.DialectWrapper, value any) (exp.Expression, bool)

func column(name string) attribute {
	return func(_ goqu.DialectWrapper, value any) (exp.Expression, bool) {
		return goqu.C(name).Eq(value), true
	}
}

// keyColumn compares against a column holding domain.FoldKey of the value.
// The key is computed in Go; sqlite's lower() only folds ASCII.
func keyColumn(name string) attribute {
	return func(_ goqu.DialectWrapper, value any) (exp.Expression, bool) {
		s, ok := value.(string)
		if !ok {
			return nil, false
		}
		return goqu.C(name).Eq(domain.FoldKey(s)), true
	}
}

// table implements repository.Repository for one entity kind. Child rows
// (place amenity links) are handled through the load and save hooks, which
// always run on the same querier as the parent statement.
type table[T domain.Entity[T], P domain.Patch[T]] struct {
	db      *DB
	name    string
	kind    string
	columns []any
	attrs   map[string]attribute
	record  func(T) goqu.Record
	scan    func(s scanner) (T, error)
	load    func(ctx context.Context, q querier, items []T) error
	save    func(ctx context.Context, q querier, item T) error
}

func (t *table[T, P]) selectColumns() []any {
	return append(append([]any{}, metaColumns...), t.columns...)
}

func (t *table[T, P]) query(ctx context.Context, q querier, where exp.Expression, limit uint) ([]T, error) {
	ds := t.db.dialect.From(t.name).Prepared(true).
		Select(t.selectColumns()...).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc())
	if where != nil {
		ds = ds.Where(where)
	}
	if limit > 0 {
		ds = ds.Limit(limit)
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s select: %w", t.kind, err)
	}

	items, err := t.scanAll(ctx, q, query, args)
	if err != nil {
		return nil, err
	}

	// child rows are read after the parent cursor is closed; sqlite runs on one connection
	if t.load != nil && len(items) > 0 {
		if err := t.load(ctx, q, items); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (t *table[T, P]) scanAll(ctx context.Context, q querier, query string, args []any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", t.kind, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.kind, err)
		}
		meta := item.Metadata()
		meta.CreatedAt = meta.CreatedAt.UTC()
		meta.UpdatedAt = meta.UpdatedAt.UTC()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.kind, err)
	}
	return items, nil
}

func (t *table[T, P]) first(ctx context.Context, q querier, where exp.Expression) (T, bool, error) {
	var zero T
	items, err := t.query(ctx, q, where, 1)
	if err != nil || len(items) == 0 {
		return zero, false, err
	}
	return items[0], true, nil
}

func (t *table[T, P]) lookup(attr string, value any) (exp.Expression, bool, error) {
	match, ok := t.attrs[attr]
	if !ok {
		return nil, false, fmt.Errorf("%s has no attribute %q", t.kind, attr)
	}
	where, ok := match(t.db.dialect, value)
	return where, ok, nil
}

func (t *table[T, P]) Get(ctx context.Context, id string) (T, error) {
	item, _, err := t.first(ctx, t.db.sql, goqu.C("id").Eq(id))
	return item, err
}

func (t *table[T, P]) GetByAttribute(ctx context.Context, attr string, value any) (T, error) {
	var zero T
	where, ok, err := t.lookup(attr, value)
	if err != nil || !ok {
		return zero, err
	}
	item, _, err := t.first(ctx, t.db.sql, where)
	return item, err
}

func (t *table[T, P]) GetAll(ctx context.Context) ([]T, error) {
	return t.query(ctx, t.db.sql, nil, 0)
}

func (t *table[T, P]) FindAll(ctx context.Context, attr string, value any) ([]T, error) {
	where, ok, err := t.lookup(attr, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []T{}, nil
	}
	return t.query(ctx, t.db.sql, where, 0)
}

func (t *table[T, P]) Add(ctx context.Context, entity T) (T, error) {
	var zero T
	stored := entity.Clone()
	meta := stored.Metadata()
	meta.Stamp(t.db.now())

	err := t.db.inTx(ctx, func(tx *sql.Tx) error {
		rec := t.record(stored)
		rec["id"] = meta.ID
		rec["created_at"] = meta.CreatedAt
		rec["updated_at"] = meta.UpdatedAt

		query, args, err := t.db.dialect.Insert(t.name).Prepared(true).Rows(rec).ToSQL()
		if err != nil {
			return fmt.Errorf("build %s insert: %w", t.kind, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return t.writeError("insert", err)
		}
		if t.save != nil {
			return t.save(ctx, tx, stored)
		}
		return nil
	})
	if err != nil {
		return zero, err
	}

	*entity.Metadata() = *meta
	return stored, nil
}

func (t *table[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var updated T
	err := t.db.inTx(ctx, func(tx *sql.Tx) error {
		current, found, err := t.first(ctx, tx, goqu.C("id").Eq(id))
		if err != nil || !found {
			return err
		}
		patch.Apply(current)
		meta := current.Metadata()
		meta.Touch(t.db.now())

		rec := t.record(current)
		rec["updated_at"] = meta.UpdatedAt
		query, args, err := t.db.dialect.Update(t.name).Prepared(true).
			Set(rec).
			Where(goqu.C("id").Eq(id)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build %s update: %w", t.kind, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return t.writeError("update", err)
		}
		if t.save != nil {
			if err := t.save(ctx, tx, current); err != nil {
				return err
			}
		}
		updated = current
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

func (t *table[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	query, args, err := t.db.dialect.Delete(t.name).Prepared(true).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build %s delete: %w", t.kind, err)
	}
	res, err := t.db.sql.ExecContext(ctx, query, args...)
	if err != nil {
		return false, t.writeError("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s rows affected: %w", t.kind, err)
	}
	return n > 0, nil
}

// writeError turns constraint violations into conflicts.
func (t *table[T, P]) writeError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return apperrors.Conflict("%s already exists", t.kind)
	case isForeignKeyViolation(err):
		return apperrors.Conflict("%s violates a reference constraint", t.kind)
	default:
		return fmt.Errorf("%s %s: %w", op, t.kind, err)
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}
