// Package failure classifies pipeline errors by the stage that produced them.
package failure

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Input          Kind = "input"
	Storage        Kind = "storage"
	Transcode      Kind = "transcode"
	Transcription  Kind = "transcription"
	Classification Kind = "classification"
	Synthesis      Kind = "synthesis"
	Schema         Kind = "schema"
)

// Error tags an underlying error with the stage it came from.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind) + " error"
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns nil when err is nil. An error that already carries a kind is
// returned as is so the innermost stage wins.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

func Wrapf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
