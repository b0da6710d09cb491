package notify

import (
	"context"
	"errors"

	"go-restaurant-pos/models"
)

type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Fanout delivers every event to each of its notifiers, even when an
// earlier one fails, and reports the failures together.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, target := range f {
		if err := target.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
