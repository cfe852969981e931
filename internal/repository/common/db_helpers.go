package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/services-marketplace/internal/logger"
)

// Builder строит запросы с плейсхолдерами PostgreSQL.
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// GetOne выполняет собранный запрос и сканирует одну строку.
// Отсутствие строки превращается в notFoundErr.
func GetOne[T any](ctx context.Context, q sqlx.QueryerContext, query sq.SelectBuilder, notFoundErr error) (*T, error) {
	sqlText, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entity T
	if err := sqlx.GetContext(ctx, q, &entity, sqlText, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundErr
		}
		return nil, err
	}
	return &entity, nil
}

// GetByID читает строку таблицы по первичному ключу.
func GetByID[T any](ctx context.Context, q sqlx.QueryerContext, table string, id int64, notFoundErr error) (*T, error) {
	return GetByField[T](ctx, q, table, "id", id, notFoundErr)
}

// GetByField читает строку таблицы по значению колонки. Имя колонки не должно приходить от клиента.
func GetByField[T any](ctx context.Context, q sqlx.QueryerContext, table, field string, value interface{}, notFoundErr error) (*T, error) {
	entity, err := GetOne[T](ctx, q, Builder.Select("*").From(table).Where(sq.Eq{field: value}), notFoundErr)
	if err != nil && !errors.Is(err, notFoundErr) {
		return nil, fmt.Errorf("get %s by %s: %w", table, field, err)
	}
	return entity, err
}

// WithTransaction выполняет fn в транзакции. Ошибка fn или паника откатывают транзакцию.
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Log.WithError(rbErr).Error("repository: не удалось откатить транзакцию")
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
