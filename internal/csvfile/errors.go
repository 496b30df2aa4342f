package csvfile

import (
	"errors"
	"fmt"
)

// ErrorKind classifies load failures.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindMalformed     ErrorKind = "malformed"
	KindMissingColumn ErrorKind = "missing_column"
	KindInvalidValue  ErrorKind = "invalid_value"
)

// LoadError wraps a load failure with operation context and a kind.
type LoadError struct {
	Op   string
	Kind ErrorKind
	Path string // source file or sheet, when known
	Line int    // 1-based line of the offending record, 0 if not applicable
	Err  error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Line > 0 {
		base += fmt.Sprintf(" (line=%d)", e.Line)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is a LoadError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind == kind
	}
	return false
}
