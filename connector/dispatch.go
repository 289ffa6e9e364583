package connector

import "context"

// Dispatcher decorates a Connector with the shared rate limiter and the
// bounded retry policy. Every outbound call acquires a token first; a token
// acquired for a failed attempt is not reused, each retry waits again.
type Dispatcher struct {
	inner   Connector
	limiter *RateLimiter
	retry   RetryPolicy
}

var _ Connector = new(Dispatcher)

func NewDispatcher(inner Connector, limiter *RateLimiter, retry RetryPolicy) *Dispatcher {
	return &Dispatcher{inner: inner, limiter: limiter, retry: retry}
}

func (d *Dispatcher) Name() string {
	return d.inner.Name()
}

func (d *Dispatcher) call(ctx context.Context, opName string, op func() error) error {
	return d.retry.Run(ctx, d.inner.Name(), opName, func() error {
		if err := d.limiter.Acquire(ctx); err != nil {
			return err
		}
		return op()
	})
}

func (d *Dispatcher) Fetch(ctx context.Context, itemType string, id string) (Item, error) {
	var out Item
	err := d.call(ctx, "fetch", func() error {
		var err error
		out, err = d.inner.Fetch(ctx, itemType, id)
		return err
	})
	return out, err
}

func (d *Dispatcher) List(ctx context.Context, query ListQuery) ([]Item, error) {
	var out []Item
	err := d.call(ctx, "list", func() error {
		var err error
		out, err = d.inner.List(ctx, query)
		return err
	})
	return out, err
}

func (d *Dispatcher) Create(ctx context.Context, itemType string, payload Item) (Item, error) {
	var out Item
	err := d.call(ctx, "create", func() error {
		var err error
		out, err = d.inner.Create(ctx, itemType, payload)
		return err
	})
	return out, err
}

func (d *Dispatcher) UploadAttachment(ctx context.Context, ownerId string, blob Attachment) (Item, error) {
	var out Item
	err := d.call(ctx, "uploadAttachment", func() error {
		var err error
		out, err = d.inner.UploadAttachment(ctx, ownerId, blob)
		return err
	})
	return out, err
}

func (d *Dispatcher) SetLabel(ctx context.Context, ownerId string, label string) error {
	return d.call(ctx, "setLabel", func() error {
		return d.inner.SetLabel(ctx, ownerId, label)
	})
}

func (d *Dispatcher) SetField(ctx context.Context, ownerId string, field string, value any) error {
	return d.call(ctx, "setField", func() error {
		return d.inner.SetField(ctx, ownerId, field, value)
	})
}

func (d *Dispatcher) TestConnection(ctx context.Context) error {
	return d.call(ctx, "testConnection", func() error {
		return d.inner.TestConnection(ctx)
	})
}
