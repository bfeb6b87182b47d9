// Package notify announces finished ingestion batches to the outside world.
package notify

import (
	"context"
	"errors"

	"jobmate/aggregator-service/internal/ingest"
)

// Multi fans a report out to several notifiers. Every notifier is called;
// the errors are joined.
type Multi []ingest.Notifier

func (m Multi) Notify(ctx context.Context, report ingest.BatchReport) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards reports.
type Nop struct{}

func (Nop) Notify(context.Context, ingest.BatchReport) error { return nil }

// Combine returns the notifiers as a single one: Nop for none, the notifier
// itself for one, Multi otherwise. Nil entries are dropped.
func Combine(notifiers ...ingest.Notifier) ingest.Notifier {
	out := make(Multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	switch len(out) {
	case 0:
		return Nop{}
	case 1:
		return out[0]
	}
	return out
}
