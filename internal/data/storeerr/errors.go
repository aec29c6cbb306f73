// Package storeerr classifies failures from the document store (gorm/Postgres)
// and the graph store (Neo4j) into a small set of codes shared by callers that
// need to decide whether a retry can help.
package storeerr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"gorm.io/gorm"
)

type Code string

const (
	CodeValidation Code = "validation"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeRetryable  Code = "retryable"
	CodeCancelled  Code = "cancelled"
	CodeInternal   Code = "internal"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("store validation")
	// ErrNotFound indicates the addressed record does not exist.
	ErrNotFound = errors.New("store record not found")
	// ErrUnavailable indicates the backing store is not configured or reachable.
	ErrUnavailable = errors.New("store unavailable")
)

// Error carries a classification code alongside the failing operation.
type Error struct {
	Code  Code
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	switch {
	case op != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %v (%s)", op, e.Cause, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case e.Cause != nil:
		return fmt.Sprintf("%v (%s)", e.Cause, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Wrap annotates err with op and its classification. Already classified
// errors pass through unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Code: Classify(err), Op: strings.TrimSpace(op), Cause: err}
}

// CodeOf returns the classification of err, computing it when err was not
// produced by Wrap.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return Classify(err)
}

func IsRetryable(err error) bool {
	return CodeOf(err) == CodeRetryable
}

// Classify maps infrastructure failures into codes.
func Classify(err error) Code {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return CodeNotFound
	case errors.Is(err, ErrUnavailable):
		return CodeRetryable
	case errors.Is(err, context.Canceled):
		return CodeCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return CodeRetryable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return CodeConflict // unique_violation
		case "40001", "40P01", "55P03", "57P01", "53300":
			return CodeRetryable // serialization/deadlock/lock_not_available/admin_shutdown/too_many_connections
		}
	}

	if neo4j.IsRetryable(err) || neo4j.IsConnectivityError(err) {
		return CodeRetryable
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "already exists"):
		return CodeConflict
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "unavailable"),
		strings.Contains(msg, "temporar"):
		return CodeRetryable
	default:
		return CodeInternal
	}
}
