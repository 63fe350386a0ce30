package validate

import (
	"strings"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Message is the client-facing text: the first failure only.
func (e Errs) Message() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Msg
}

// First returns an Errs holding the first non-nil check, or nil.
func First(checks ...*ErrField) error {
	for _, c := range checks {
		if c != nil {
			return Errs{*c}
		}
	}
	return nil
}

// Helpers
func Required(field, value, msg string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: msg}
	}
	return nil
}

// NonNegative fails when v is missing or below zero.
func NonNegative(field string, v *float64, msg string) *ErrField {
	if v == nil || *v < 0 {
		return &ErrField{Field: field, Msg: msg}
	}
	return nil
}

// Between fails when v is missing or outside [min, max].
func Between(field string, v *float64, min, max float64, msg string) *ErrField {
	if v == nil || *v < min || *v > max {
		return &ErrField{Field: field, Msg: msg}
	}
	return nil
}

func Email(field, value, msg string) *ErrField {
	v := strings.TrimSpace(value)
	at := strings.Index(v, "@")
	if at <= 0 || at == len(v)-1 {
		return &ErrField{Field: field, Msg: msg}
	}
	return nil
}
