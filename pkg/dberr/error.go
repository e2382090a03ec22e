// Package dberr defines the typed error taxonomy raised by the table core:
// lock/transaction conflicts, constraint violations, and internal
// consistency failures, each classified by the handling strategy a caller
// should apply.
package dberr

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Category classifies an error by the handling strategy a caller should
// apply: retry, surface to the user, or treat as an internal bug.
type Category int

const (
	CategoryUser Category = iota
	CategoryTransient
	CategoryConcurrency
	CategorySystem
)

func (c Category) String() string {
	switch c {
	case CategoryUser:
		return "user"
	case CategoryTransient:
		return "transient"
	case CategoryConcurrency:
		return "concurrency"
	case CategorySystem:
		return "system"
	default:
		return "unknown"
	}
}

// Kind enumerates the table core's error taxonomy. Every DBError carries
// exactly one Kind, and its Category follows from it.
type Kind int

const (
	// LockTimeout: a session waited longer than its configured lock timeout
	// for a table lock (§4.3).
	LockTimeout Kind = iota
	// Deadlock: the lock manager's wait-for walk found a cycle back to the
	// requesting session (§4.3).
	Deadlock
	// DuplicateKey: a unique index rejected an insert whose key already
	// exists (§4.2, §4.4). The unique indexes raise it for every conflict,
	// whether or not the existing row is committed.
	DuplicateKey
	// ConcurrentUpdate: a unique-index conflict with another session's
	// uncommitted row (§4.4, Open Question 1). Defined for callers to match
	// on; nothing in this module raises it.
	ConcurrentUpdate
	// ColumnNotNullable: a table's primary-key column is declared nullable
	// when its primary index is created (§7, §8).
	ColumnNotNullable
	// UnsupportedScan: a caller requested a range or ordered scan from an
	// index variant that only supports point lookups (§4.2).
	UnsupportedScan
	// TransactionClosed: a cursor or mutator observed its owning
	// transaction commit or roll back mid-operation (§4.1, §5).
	TransactionClosed
	// InternalCheck: an invariant the table core itself is responsible for
	// upholding was violated. Always a bug, never a user-facing condition.
	InternalCheck
)

func (k Kind) String() string {
	switch k {
	case LockTimeout:
		return "LOCK_TIMEOUT"
	case Deadlock:
		return "DEADLOCK"
	case DuplicateKey:
		return "DUPLICATE_KEY"
	case ConcurrentUpdate:
		return "CONCURRENT_UPDATE"
	case ColumnNotNullable:
		return "COLUMN_NOT_NULLABLE"
	case UnsupportedScan:
		return "UNSUPPORTED_SCAN"
	case TransactionClosed:
		return "TRANSACTION_CLOSED"
	case InternalCheck:
		return "INTERNAL_CHECK"
	default:
		return "UNKNOWN"
	}
}

func (k Kind) category() Category {
	switch k {
	case LockTimeout:
		return CategoryTransient
	case Deadlock, ConcurrentUpdate:
		return CategoryConcurrency
	case DuplicateKey, ColumnNotNullable, UnsupportedScan, TransactionClosed:
		return CategoryUser
	case InternalCheck:
		return CategorySystem
	default:
		return CategorySystem
	}
}

// DBError is a structured error carrying a Kind, human-readable detail, and
// the operation/component it originated from.
type DBError struct {
	Kind      Kind
	Category  Category
	Message   string
	Detail    string
	Operation string
	Component string
	Cause     error
	Stack     []uintptr
}

// New creates a DBError of the given kind.
func New(kind Kind, message string) *DBError {
	return &DBError{
		Kind:     kind,
		Category: kind.category(),
		Message:  message,
		Stack:    captureStack(),
	}
}

// Newf creates a DBError of the given kind with a formatted detail string.
func Newf(kind Kind, message, detailFormat string, args ...any) *DBError {
	err := New(kind, message)
	err.Detail = fmt.Sprintf(detailFormat, args...)
	return err
}

// Wrap attaches operation/component context to err. If err is already a
// DBError, the context fills in only unset fields and the original Kind is
// preserved; otherwise err is wrapped as an InternalCheck.
func Wrap(err error, operation, component string) *DBError {
	if err == nil {
		return nil
	}

	var dbErr *DBError
	if errors.As(err, &dbErr) {
		if dbErr.Operation == "" {
			dbErr.Operation = operation
		}
		if dbErr.Component == "" {
			dbErr.Component = component
		}
		return dbErr
	}

	return &DBError{
		Kind:      InternalCheck,
		Category:  CategorySystem,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     err,
		Stack:     captureStack(),
	}
}

func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}

// Error implements the error interface:
// [KIND] Message: Detail (operation: Operation, component: Component) caused by: Cause
func (e *DBError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Kind, e.Message))

	if e.Detail != "" {
		b.WriteString(fmt.Sprintf(": %s", e.Detail))
	}

	if e.Operation != "" {
		b.WriteString(fmt.Sprintf(" (operation: %s", e.Operation))
		if e.Component != "" {
			b.WriteString(fmt.Sprintf(", component: %s", e.Component))
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}

	return b.String()
}

func (e *DBError) Unwrap() error { return e.Cause }

// Is reports whether err is a DBError of the given kind.
func Is(err error, kind Kind) bool {
	var dbErr *DBError
	if !errors.As(err, &dbErr) {
		return false
	}
	return dbErr.Kind == kind
}

// FormatStack returns a human-readable stack trace for debugging.
func (e *DBError) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)

	b.WriteString("Stack trace:\n")
	for {
		f, more := frames.Next()
		b.WriteString(fmt.Sprintf("  %s\n    %s:%d\n", f.Function, f.File, f.Line))
		if !more {
			break
		}
	}

	return b.String()
}
