// Package validation concentra las reglas de campos (requeridos, rangos, fechas)
// que comparten handlers y servicios. Ninguna regla modifica el input: solo
// acumula errores por campo.
package validation

import (
	"strings"
	"time"
	"unicode/utf8"
)

type Code string

const (
	CodeRequired     Code = "required"
	CodeTooLong      Code = "too_long"
	CodeOutOfRange   Code = "out_of_range"
	CodeInFuture     Code = "in_future"
	CodeInvalidValue Code = "invalid_value"
)

type FieldError struct {
	Field string `json:"field"`
	Code  Code   `json:"code"`
}

// Result es ok cuando no hay errores.
type Result struct {
	Errors []FieldError `json:"errors"`
}

func (r Result) OK() bool { return len(r.Errors) == 0 }

// Has indica si field falló con code.
func (r Result) Has(field string, code Code) bool {
	for _, e := range r.Errors {
		if e.Field == field && e.Code == code {
			return true
		}
	}
	return false
}

// Error permite devolver Result como error cuando no está ok.
func (r Result) Error() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Field+":"+string(e.Code))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Err devuelve nil si el resultado está ok.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return r
}

func (r *Result) Add(field string, code Code) {
	r.Errors = append(r.Errors, FieldError{Field: field, Code: code})
}

func (r *Result) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		r.Add(field, CodeRequired)
		return false
	}
	return true
}

func (r *Result) MaxLen(field, value string, max int) bool {
	if utf8.RuneCountInString(value) > max {
		r.Add(field, CodeTooLong)
		return false
	}
	return true
}

// IntRange valida [min, max] solo si v viene (nil = no enviado).
func (r *Result) IntRange(field string, v *int, min, max int) bool {
	if v == nil {
		return true
	}
	if *v < min || *v > max {
		r.Add(field, CodeOutOfRange)
		return false
	}
	return true
}

// PositiveFloatMax valida (0, max] solo si v viene.
func (r *Result) PositiveFloatMax(field string, v *float64, max float64) bool {
	if v == nil {
		return true
	}
	if *v <= 0 || *v > max {
		r.Add(field, CodeOutOfRange)
		return false
	}
	return true
}

func (r *Result) NotFuture(field string, t *time.Time, now time.Time) bool {
	if t == nil {
		return true
	}
	if t.After(now) {
		r.Add(field, CodeInFuture)
		return false
	}
	return true
}

// OneOf valida pertenencia a un conjunto cerrado; vacío no se valida aquí (usar Required).
func (r *Result) OneOf(field, value string, allowed []string) bool {
	if strings.TrimSpace(value) == "" {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	r.Add(field, CodeInvalidValue)
	return false
}
