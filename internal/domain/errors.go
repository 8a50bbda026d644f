package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures at the data-access boundary.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConnection covers authentication failures and unreachable hosts.
	KindConnection
	// KindSchemaNotFound means no namespace with the expected tables is resolved.
	KindSchemaNotFound
	// KindQuery covers malformed statements and constraint violations.
	KindQuery
	KindNotFound
	KindInvalid
	// KindBusy rejects a session transition while another one is running.
	KindBusy
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindSchemaNotFound:
		return "schema_not_found"
	case KindQuery:
		return "query"
	case KindNotFound:
		return "not_found"
	case KindInvalid:
		return "invalid"
	case KindBusy:
		return "busy"
	default:
		return "unknown"
	}
}

var (
	ErrNotFound        = errors.New("not found")
	ErrNoSession       = errors.New("no validated session")
	ErrSchemaNotFound  = errors.New("hotel schema not resolved")
	ErrTransitionBusy  = errors.New("session transition already in progress")
	ErrElevateThrottle = errors.New("too many elevation attempts")
)

// Error is the only error type returned across the storage boundary.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error. An err that already is an *Error keeps its kind.
func E(kind Kind, op string, err error) error {
	var de *Error
	if errors.As(err, &de) {
		return &Error{Kind: de.Kind, Op: op, Err: de.Err}
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
