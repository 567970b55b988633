package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrBusinessRule      = errors.New("business rule violation")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPersistence       = errors.New("persistence failure")
)

// ValidationError is a client-fixable, field-scoped failure. Quote is the
// 1-based position of the offending quotation, 0 when the error is not
// quote-scoped.
type ValidationError struct {
	Field string
	Quote int
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Quote > 0 {
		return fmt.Sprintf("quotation %d: %s", e.Quote, e.Msg)
	}
	if e.Field != "" {
		return fmt.Sprintf("field %q: %s", e.Field, e.Msg)
	}
	return e.Msg
}
