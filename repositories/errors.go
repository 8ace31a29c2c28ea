package repositories

import (
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicate   = errors.New("duplicate value violates unique constraint")
	ErrStaleStatus = errors.New("reservation status changed concurrently")
	ErrReferenced  = errors.New("record is still referenced")
)

const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	pgUniqueViolation    = "23505"
	pgForeignKeyViolated = "23503"
)

// ConstraintError is a unique-constraint violation. Field names the column
// when it can be recovered from the constraint name.
type ConstraintError struct {
	Constraint string
	Field      string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("duplicate %s (constraint %s)", e.Field, e.Constraint)
	}
	return fmt.Sprintf("duplicate value (constraint %s)", e.Constraint)
}

func (e *ConstraintError) Is(target error) bool { return target == ErrDuplicate }

func (e *ConstraintError) Unwrap() error { return e.Err }

func NewConstraintError(constraint string, err error) *ConstraintError {
	return &ConstraintError{Constraint: constraint, Field: constraintField(constraint), Err: err}
}

// DuplicateField returns the offending field of a unique violation.
func DuplicateField(err error) (string, bool) {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Field, true
	}
	return "", false
}

func constraintField(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "email"):
		return "email"
	case strings.Contains(n, "cpf"):
		return "cpf"
	case strings.Contains(n, "number"):
		return "number"
	case strings.Contains(n, "reservation"):
		return "reservation_id"
	}
	return n
}

// translateError maps driver and gorm errors onto the package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return NewConstraintError(mysqlKeyName(myErr.Message), err)
		case mysqlRowIsReferenced:
			return fmt.Errorf("%w: %v", ErrReferenced, err)
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return NewConstraintError(pgErr.ConstraintName, err)
		case pgForeignKeyViolated:
			return fmt.Errorf("%w: %v", ErrReferenced, err)
		}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewConstraintError("", err)
	}
	return err
}

// mysqlKeyName pulls the index name out of
// "Duplicate entry 'x' for key 'table.index_name'".
func mysqlKeyName(msg string) string {
	const marker = "for key '"
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	key := strings.TrimSuffix(msg[i+len(marker):], "'")
	if dot := strings.LastIndex(key, "."); dot >= 0 {
		key = key[dot+1:]
	}
	return key
}
