package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var seen []string
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketAutoClosed, func(_ context.Context, e Event) error {
		t.Fatal("handler for another event type must not fire")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "tkt-1"})
	require.NoError(t, err)
	require.Equal(t, []string{"tkt-1", "tkt-1"}, seen)
}

func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	invoked := false
	d.Subscribe(EventTicketEscalated, func(_ context.Context, _ Event) error {
		return errors.New("subscriber broke")
	})
	d.Subscribe(EventTicketEscalated, func(_ context.Context, _ Event) error {
		invoked = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketEscalated, TicketID: "tkt-2"})
	require.NoError(t, err)
	require.True(t, invoked)
}
