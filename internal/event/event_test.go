package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type openedPayload struct {
	UserID string `json:"user_id"`
	ItemID int    `json:"item_id"`
}

func TestMemoryBus_DeliversToSubscriber(t *testing.T) {
	bus := NewMemoryBus()
	var received Event

	bus.Subscribe(Type("case.opened"), func(ctx context.Context, e Event) error {
		received = e
		return nil
	})

	err := bus.Publish(context.Background(), Event{
		Version: EventSchemaVersion,
		Type:    Type("case.opened"),
		Payload: openedPayload{UserID: "user1", ItemID: 7},
	})

	require.NoError(t, err)
	assert.Equal(t, Type("case.opened"), received.Type)
	assert.Equal(t, openedPayload{UserID: "user1", ItemID: 7}, received.Payload)
}

func TestMemoryBus_FanOut(t *testing.T) {
	bus := NewMemoryBus()
	count := 0

	handler := func(ctx context.Context, e Event) error {
		count++
		return nil
	}
	bus.Subscribe(Type("trade.accepted"), handler)
	bus.Subscribe(Type("trade.accepted"), handler)

	err := bus.Publish(context.Background(), Event{Version: EventSchemaVersion, Type: Type("trade.accepted")})

	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMemoryBus_NoSubscribersIsNoop(t *testing.T) {
	bus := NewMemoryBus()

	err := bus.Publish(context.Background(), Event{Version: EventSchemaVersion, Type: Type("item.repaired")})

	assert.NoError(t, err)
}

func TestMemoryBus_HandlerErrorPropagates(t *testing.T) {
	bus := NewMemoryBus()
	bus.Subscribe(Type("trade.expired"), func(ctx context.Context, e Event) error {
		return errors.New("consumer down")
	})

	err := bus.Publish(context.Background(), Event{Version: EventSchemaVersion, Type: Type("trade.expired")})

	assert.ErrorContains(t, err, "consumer down")
}

func TestDecodePayload_TypeAssertion(t *testing.T) {
	in := openedPayload{UserID: "user1", ItemID: 3}

	out, err := DecodePayload[openedPayload](in)

	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodePayload_JSONFallback(t *testing.T) {
	// Dead-letter replay hands payloads back as generic maps
	in := map[string]any{"user_id": "user1", "item_id": float64(3)}

	out, err := DecodePayload[openedPayload](in)

	require.NoError(t, err)
	assert.Equal(t, openedPayload{UserID: "user1", ItemID: 3}, out)
}
