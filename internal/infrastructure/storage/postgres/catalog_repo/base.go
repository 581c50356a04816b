// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories (products, warehouses, chart of accounts).
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/infrastructure/storage/postgres"
)

// baseRepo provides shared CRUD plumbing for catalog entities. Embed in
// specific repositories; entity-specific inserts and updates stay in them
// because column sets differ.
type baseRepo[T any] struct {
	txManager *postgres.TxManager
	tableName string
	cols      []string
}

func newBaseRepo[T any](txManager *postgres.TxManager, tableName string, cols []string) baseRepo[T] {
	return baseRepo[T]{txManager: txManager, tableName: tableName, cols: cols}
}

func (r *baseRepo[T]) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *baseRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.cols...).From(r.tableName)
}

// getOne runs a single-row select, mapping no-rows to NotFound.
func (r *baseRepo[T]) getOne(ctx context.Context, q squirrel.SelectBuilder, key any) (*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var item T
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.tableName, key)
		}
		return nil, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return &item, nil
}

// getByID retrieves an entity by primary key.
func (r *baseRepo[T]) getByID(ctx context.Context, entityID id.ID) (*T, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}).Limit(1), entityID.String())
}

// getForUpdate retrieves an entity by primary key with a row lock.
func (r *baseRepo[T]) getForUpdate(ctx context.Context, entityID id.ID) (*T, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}).Suffix("FOR UPDATE"), entityID.String())
}

// list retrieves entities ordered by code, optionally active-only.
func (r *baseRepo[T]) list(ctx context.Context, activeOnly bool) ([]*T, error) {
	q := r.baseSelect().OrderBy("code")
	if activeOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*T
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return items, nil
}

// exec runs a write statement, mapping unique violations to Duplicate.
func (r *baseRepo[T]) exec(ctx context.Context, sqlizer squirrel.Sqlizer, dupField, dupValue string) error {
	sql, args, err := sqlizer.ToSql()
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate(r.tableName, dupField, dupValue).WithCause(err)
		}
		return fmt.Errorf("exec on %s: %w", r.tableName, err)
	}
	return nil
}

// execVersioned runs an optimistic-locked update; zero rows affected means a
// concurrent writer won.
func (r *baseRepo[T]) execVersioned(ctx context.Context, q squirrel.UpdateBuilder, entityID id.ID) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.tableName, entityID.String())
	}
	return nil
}
