// Package messaging publishes order events to the kitchen display and other subscribers.
package messaging

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/ports"
)

var (
	_ ports.EventPublisher = Noop{}
	_ ports.EventPublisher = Fanout(nil)
)

// Noop discards events. It is the default when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, domain.Event) error { return nil }

// Fanout delivers each event to every publisher and joins their errors.
type Fanout []ports.EventPublisher

func (f Fanout) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func encode(event domain.Event) ([]byte, error) {
	return json.Marshal(event)
}
