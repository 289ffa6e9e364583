package connector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyConnector struct {
	creates  int
	failures int
	status   int
}

func (f *flakyConnector) Name() string { return "lexoffice" }

func (f *flakyConnector) Fetch(ctx context.Context, itemType string, id string) (Item, error) {
	return Item{"id": id}, nil
}

func (f *flakyConnector) List(ctx context.Context, query ListQuery) ([]Item, error) {
	return nil, nil
}

func (f *flakyConnector) Create(ctx context.Context, itemType string, payload Item) (Item, error) {
	f.creates++
	if f.creates <= f.failures {
		return nil, NewStatusError("lexoffice", "create", f.status, "fail")
	}
	return Item{"id": "v-1"}, nil
}

func (f *flakyConnector) UploadAttachment(ctx context.Context, ownerId string, blob Attachment) (Item, error) {
	return Item{}, nil
}

func (f *flakyConnector) SetLabel(ctx context.Context, ownerId string, label string) error {
	return nil
}

func (f *flakyConnector) SetField(ctx context.Context, ownerId string, field string, value any) error {
	return nil
}

func (f *flakyConnector) TestConnection(ctx context.Context) error { return nil }

func testDispatcher(inner Connector) *Dispatcher {
	policy := RetryPolicy{MaxTries: 4, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
	return NewDispatcher(inner, NewRateLimiter(0, 1), policy)
}

func TestDispatcher_RetriesTransientFailures(t *testing.T) {
	inner := &flakyConnector{failures: 2, status: 502}
	d := testDispatcher(inner)

	item, err := d.Create(context.Background(), ITEM_TYPE_VOUCHER, Item{"type": "salesinvoice"})
	require.NoError(t, err)
	assert.Equal(t, "v-1", item.Id())
	assert.Equal(t, 3, inner.creates)
}

func TestDispatcher_DoesNotRetryClientErrors(t *testing.T) {
	inner := &flakyConnector{failures: 10, status: 400}
	d := testDispatcher(inner)

	_, err := d.Create(context.Background(), ITEM_TYPE_VOUCHER, Item{})
	require.Error(t, err)
	assert.True(t, IsKind(err, KIND_MALFORMED))
	assert.Equal(t, 1, inner.creates)
}

func TestDispatcher_TokenPerAttempt(t *testing.T) {
	inner := &flakyConnector{failures: 1, status: 429}
	// one token per second: the retry after the 429 must wait for the bucket
	d := NewDispatcher(inner, NewRateLimiter(50, 1),
		RetryPolicy{MaxTries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond})

	start := time.Now()
	_, err := d.Create(context.Background(), ITEM_TYPE_VOUCHER, Item{})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.creates)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond, "second attempt acquired a fresh token")
}

func TestDispatcher_SurfacesRateLimitTimeout(t *testing.T) {
	inner := &flakyConnector{}
	limiter := NewRateLimiter(1, 1)
	require.NoError(t, limiter.Acquire(context.Background()), "drain the burst token")
	d := NewDispatcher(inner, limiter,
		RetryPolicy{MaxTries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := d.Create(ctx, ITEM_TYPE_VOUCHER, Item{})
	assert.ErrorIs(t, err, ErrRateLimitTimeout)
	assert.Zero(t, inner.creates, "the call never went out")
}
