package handler

import (
	"errors"
	"fmt"
)

// CollectionError reports an identifier that could not be resolved to
// documentable data. Hosts treat it as a broken reference, not a fatal error.
type CollectionError struct {
	Identifier string
	// Subject names what was looked up ("script", "module"...).
	Subject string
	Path    string
	Err     error
}

func (e *CollectionError) Error() string {
	subject := e.Subject
	if subject == "" {
		subject = "item"
	}
	if e.Path != "" {
		return fmt.Sprintf("could not find %s '%s'", subject, e.Path)
	}
	return fmt.Sprintf("could not collect %s '%s'", subject, e.Identifier)
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}

// IsCollectionError reports whether err wraps a *CollectionError.
func IsCollectionError(err error) bool {
	var target *CollectionError
	return errors.As(err, &target)
}
