package db

import "fmt"

// Op identifies the failed store operation.
type Op string

const (
	OpWrite  Op = "write"
	OpDelete Op = "delete"
	OpSearch Op = "search"
	OpIndex  Op = "index"
)

// Error wraps a backend failure with the operation that caused it.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("db %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
