package inventory

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound matches every NotFoundError via errors.Is.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID is returned by stores for ids they could never have issued.
	ErrInvalidID = errors.New("Invalid ID format")
	// ErrProductHasParts is the integrity violation raised when deleting a
	// product that still lists associated parts.
	ErrProductHasParts = errors.New("Cannot delete a product with associated parts")
)

// Entity names used in messages.
const (
	EntityPart    = "Part"
	EntityProduct = "Product"
)

// NotFoundError names the entity that could not be found.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound builds a NotFoundError for entity.
func NotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// FieldError is one rule violation on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every rule violation found on a candidate record.
type ValidationError struct {
	Entity string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Entity, strings.Join(e.Messages(), ", "))
}

// Messages returns the bare messages in check order.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return msgs
}

// errorSet accumulates field errors during a validation pass.
type errorSet struct {
	entity string
	fields []FieldError
}

func (s *errorSet) add(field, msg string) {
	s.fields = append(s.fields, FieldError{Field: field, Message: msg})
}

func (s *errorSet) err() error {
	if len(s.fields) == 0 {
		return nil
	}
	return &ValidationError{Entity: s.entity, Fields: s.fields}
}
