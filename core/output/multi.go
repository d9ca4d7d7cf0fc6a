package output

import (
	"context"
	"errors"

	"github.com/gaurav-prasanna/pagechunk/core"
)

// Multi fans each record out to every sink. A failing sink does not stop
// delivery to the others.
type Multi []core.Sink

// Push delivers rec to all sinks and joins their errors.
func (m Multi) Push(ctx context.Context, rec *core.PageRecord) error {
	var errs []error
	for _, s := range m {
		if err := s.Push(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
