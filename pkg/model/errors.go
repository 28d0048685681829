package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownFormType signals a form type with no registered schema.
	ErrUnknownFormType = errors.New("unknown form type")
	// ErrUnknownField signals a field key (or fixed map key) the schema does
	// not declare.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownFlag signals a flag name missing from a flag set.
	ErrUnknownFlag = errors.New("unknown flag")
	// ErrIndexOutOfRange signals a list or table index outside the value.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrSchemaMismatch signals a value whose shape does not match the
	// declared kind.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrParse signals malformed configuration text.
	ErrParse = errors.New("parse error")
	// ErrExportFailure signals a failed export backend.
	ErrExportFailure = errors.New("export failure")
)

var taxonomy = []error{
	ErrUnknownFormType,
	ErrUnknownField,
	ErrUnknownFlag,
	ErrIndexOutOfRange,
	ErrSchemaMismatch,
	ErrParse,
	ErrExportFailure,
}

// Error carries a taxonomy kind together with the form and field it refers
// to. errors.Is matches the Kind sentinel as well as the wrapped cause.
type Error struct {
	Kind     error
	Op       string
	FormType string
	Field    string
	Detail   string
	Err      error
}

// Errorf builds an Error of kind with a formatted detail message.
func Errorf(kind error, op, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Op:     op,
		Detail: fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("error")
	}
	switch {
	case e.FormType != "" && e.Field != "":
		fmt.Fprintf(&b, " (form %s, field %s)", e.FormType, e.Field)
	case e.FormType != "":
		fmt.Fprintf(&b, " (form %s)", e.FormType)
	case e.Field != "":
		fmt.Fprintf(&b, " (field %s)", e.Field)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is matches the taxonomy sentinel.
func (e *Error) Is(target error) bool {
	return e != nil && e.Kind != nil && target == e.Kind
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithField returns a copy of e scoped to a field.
func (e *Error) WithField(field string) *Error {
	out := *e
	out.Field = field
	return &out
}

// WithFormType returns a copy of e scoped to a form type.
func (e *Error) WithFormType(formType string) *Error {
	out := *e
	out.FormType = formType
	return &out
}

// Scope fills in form type and field on err when it is an *Error that does
// not carry them yet. Other errors are returned unchanged.
func Scope(err error, formType, field string) error {
	var typed *Error
	if !errors.As(err, &typed) {
		return err
	}
	scoped := *typed
	if scoped.FormType == "" {
		scoped.FormType = formType
	}
	if scoped.Field == "" {
		scoped.Field = field
	}
	return &scoped
}

// KindOf returns the taxonomy sentinel err belongs to, or nil.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range taxonomy {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
