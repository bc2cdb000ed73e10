// Package notify holds the delivery channels a sample can be pushed to.
//
// A Notifier either accepts a payload or returns an error; it never
// retries. Retrying, by putting the sample back in the cache, is the
// transmit loop's decision.
package notify

import (
	"context"
	"errors"

	"go.uber.org/multierr"
)

var (
	ErrNotReady      = errors.New("notify: channel not ready")
	ErrNoSubscribers = errors.New("notify: no subscribers")
)

// Notifier delivers one payload per call.
type Notifier interface {
	// Ready reports whether a consumer is currently able to receive
	// notifications (connected and subscribed).
	Ready() bool
	Notify(ctx context.Context, payload []byte) error
	Close() error
}

// CountPublisher is implemented by notifiers that can also expose the
// number of queued samples.
type CountPublisher interface {
	PublishCount(ctx context.Context, n uint32) error
}

// Multi fans a payload out to every ready child. Delivery counts as
// successful when at least one child accepted it.
type Multi []Notifier

// Ready reports whether any child is ready.
func (m Multi) Ready() bool {
	for _, n := range m {
		if n.Ready() {
			return true
		}
	}
	return false
}

// Notify sends payload to every ready child. It fails with ErrNotReady
// when no child is ready, or with the combined child errors when none
// accepted it.
func (m Multi) Notify(ctx context.Context, payload []byte) error {
	var errs error
	delivered := 0
	for _, n := range m {
		if !n.Ready() {
			continue
		}
		if err := n.Notify(ctx, payload); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		delivered++
	}
	if delivered > 0 {
		return nil
	}
	if errs == nil {
		return ErrNotReady
	}
	return errs
}

// PublishCount forwards n to every ready child that publishes counts.
func (m Multi) PublishCount(ctx context.Context, n uint32) error {
	var errs error
	for _, child := range m {
		if cp, ok := child.(CountPublisher); ok && child.Ready() {
			errs = multierr.Append(errs, cp.PublishCount(ctx, n))
		}
	}
	return errs
}

// Close closes every child and combines their errors.
func (m Multi) Close() error {
	var errs error
	for _, n := range m {
		errs = multierr.Append(errs, n.Close())
	}
	return errs
}
