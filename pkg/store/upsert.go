// Package store holds the write primitives every idempotent operation goes
// through. Uniqueness is always enforced by the database; these helpers only
// classify the result.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Outcome classifies a create-if-absent write.
type Outcome int

const (
	Failed Outcome = iota
	Created
	AlreadyExists
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case AlreadyExists:
		return "already exists"
	default:
		return "failed"
	}
}

// ErrNoKey is returned when UpsertByKey is called without key columns.
var ErrNoKey = errors.New("store: no conflict key given")

// ErrConflict is returned when an insert collides on a unique constraint but
// no row with the requested key exists.
var ErrConflict = errors.New("store: unique conflict outside key")

// UpsertByKey inserts row unless a row with the same values in keys already
// exists. keys are struct field names or column names forming a unique
// constraint. On AlreadyExists the stored row is loaded into row.
func UpsertByKey(ctx context.Context, db *gorm.DB, row any, keys ...string) (Outcome, error) {
	if len(keys) == 0 {
		return Failed, ErrNoKey
	}
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(row); err != nil {
		return Failed, fmt.Errorf("parse %T: %w", row, err)
	}

	fields := make([]*schema.Field, 0, len(keys))
	cols := make([]clause.Column, 0, len(keys))
	for _, k := range keys {
		field := stmt.Schema.LookUpField(k)
		if field == nil {
			return Failed, fmt.Errorf("%T has no field %q", row, k)
		}
		fields = append(fields, field)
		cols = append(cols, clause.Column{Name: field.DBName})
	}

	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: cols, DoNothing: true}).
		Create(row)
	if res.Error != nil {
		if !IsDuplicate(res.Error) {
			return Failed, res.Error
		}
		// A unique constraint other than keys fired. It only counts as an
		// existing row when one matches keys.
		if err := loadByKey(ctx, db, stmt, fields, row); err != nil {
			return Failed, fmt.Errorf("%w: %T on a constraint other than %v: %v", ErrConflict, row, keys, res.Error)
		}
		return AlreadyExists, nil
	}
	if res.RowsAffected > 0 {
		return Created, nil
	}
	if err := loadByKey(ctx, db, stmt, fields, row); err != nil {
		return Failed, fmt.Errorf("load existing %T: %w", row, err)
	}
	return AlreadyExists, nil
}

// loadByKey replaces row with the stored row matching its key fields. Key
// values are read after Create so that hook-derived keys are honored.
func loadByKey(ctx context.Context, db *gorm.DB, stmt *gorm.Statement, fields []*schema.Field, row any) error {
	rv := reflect.Indirect(reflect.ValueOf(row))
	where := make(map[string]any, len(fields))
	for _, f := range fields {
		v, _ := f.ValueOf(ctx, rv)
		where[f.DBName] = v
	}
	resetPrimaryKey(ctx, stmt, rv)
	return db.WithContext(ctx).Unscoped().Where(where).Take(row).Error
}

// Upsert inserts row or, when keys collide, overwrites updateColumns of the
// existing row with the values from row.
func Upsert(ctx context.Context, db *gorm.DB, row any, keys []string, updateColumns []string) error {
	if len(keys) == 0 {
		return ErrNoKey
	}
	cols := make([]clause.Column, len(keys))
	for i, k := range keys {
		cols[i] = clause.Column{Name: k}
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: cols, DoUpdates: clause.AssignmentColumns(updateColumns)}).
		Create(row).Error
}

// Create inserts row and reports a unique violation as AlreadyExists.
func Create(ctx context.Context, db *gorm.DB, row any) (Outcome, error) {
	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		if IsDuplicate(err) {
			return AlreadyExists, nil
		}
		return Failed, err
	}
	return Created, nil
}

// IsDuplicate reports whether err is a unique-constraint violation from any
// supported driver.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// InTx runs fn in a transaction bound to ctx.
func InTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

func resetPrimaryKey(ctx context.Context, stmt *gorm.Statement, rv reflect.Value) {
	for _, f := range stmt.Schema.PrimaryFields {
		_ = f.Set(ctx, rv, reflect.Zero(f.FieldType).Interface())
	}
}
