package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a validation failure.
type Kind string

const (
	KindRequiredFieldMissing Kind = "RequiredFieldMissing"
	KindDuplicateValue       Kind = "DuplicateValue"
	KindInvalidValue         Kind = "InvalidValue"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrRequiredFieldMissing = errors.New("required field missing")
	ErrDuplicateValue       = errors.New("duplicate value")
	ErrInvalidValue         = errors.New("invalid value")
)

// FieldError is a user-input error attached to one field. MessageKey is a
// translation key; rendering it is left to the presentation layer.
type FieldError struct {
	Field      string
	Kind       Kind
	MessageKey string
	// Params fill placeholders in the translated message, e.g. a field label.
	Params []string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Kind, e.MessageKey)
}

func (e *FieldError) Unwrap() error {
	switch e.Kind {
	case KindRequiredFieldMissing:
		return ErrRequiredFieldMissing
	case KindDuplicateValue:
		return ErrDuplicateValue
	default:
		return ErrInvalidValue
	}
}

// Errors maps field key to its error. An empty map means the values are valid.
type Errors map[string]*FieldError

// Add records an error for field unless one is already present; the first
// failing rule for a field wins.
func (e Errors) Add(field string, kind Kind, messageKey string, params ...string) Errors {
	if _, ok := e[field]; ok {
		return e
	}
	e[field] = &FieldError{Field: field, Kind: kind, MessageKey: messageKey, Params: params}
	return e
}

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Kind returns the kind recorded for field, or "".
func (e Errors) Kind(field string) Kind {
	if fe, ok := e[field]; ok {
		return fe.Kind
	}
	return ""
}

// Messages is the field -> message key view consumed by form renderers.
func (e Errors) Messages() map[string]string {
	out := make(map[string]string, len(e))
	for field, fe := range e {
		out[field] = fe.MessageKey
	}
	return out
}

// Fields returns the failing fields in lexical order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for field := range e {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// Err returns nil when e is empty, otherwise a *ValidationError.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return &ValidationError{Errors: e}
}

// ValidationError wraps a non-empty Errors so it can travel as an error.
// errors.Is matches ErrValidation and the sentinel of every contained kind.
type ValidationError struct {
	Errors Errors
}

func (v *ValidationError) Error() string {
	parts := make([]string, 0, len(v.Errors))
	for _, field := range v.Errors.Fields() {
		parts = append(parts, v.Errors[field].Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v *ValidationError) Unwrap() []error {
	out := []error{ErrValidation}
	for _, field := range v.Errors.Fields() {
		out = append(out, v.Errors[field])
	}
	return out
}
