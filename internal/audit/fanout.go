package audit

import (
	"context"

	"go.uber.org/multierr"
)

// Fanout writes each event to every sink. All sinks are tried; their errors are combined.
type Fanout []Sink

func (f Fanout) Write(ctx context.Context, e Event) error {
	var err error
	for _, s := range f {
		if s != nil {
			err = multierr.Append(err, s.Write(ctx, e))
		}
	}
	return err
}
