package events

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversAllEventsBeforeClose(t *testing.T) {
	rec := &Recorder{}
	d := NewDispatcher(rec)

	for i := 0; i < dispatchBuffer*2; i++ {
		require.NoError(t, d.Publish(context.Background(), PartLowStock, PartLowStockEvent{PartID: uint(i + 1)}))
	}
	d.Close()

	got := rec.OfType(PartLowStock)
	assert.Len(t, got, dispatchBuffer*2)
}

func TestDispatcher_CloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(LogPublisher{})
	d.Close()
	assert.NotPanics(t, d.Close)
}

func TestRecorder_OfType(t *testing.T) {
	rec := &Recorder{}
	_ = rec.Publish(context.Background(), OrderCreated, OrderCreatedEvent{OrderID: 1})
	_ = rec.Publish(context.Background(), OrderStatusChanged, OrderStatusChangedEvent{OrderID: 1, From: "new", To: "done"})

	created := rec.OfType(OrderCreated)
	require.Len(t, created, 1)
	assert.Equal(t, uint(1), created[0].(OrderCreatedEvent).OrderID)
	assert.Len(t, rec.Events(), 2)
}

func TestLogPublisher_MasksSecrets(t *testing.T) {
	tests := []struct {
		name       string
		routingKey string
		payload    interface{}
		want       []string
		hidden     string
	}{
		{
			name:       "reset token",
			routingKey: PasswordResetRequested,
			payload:    PasswordResetRequestedEvent{UserID: 7, Email: "jan@x.pl", Token: "s3cr3t-reset-token"},
			want:       []string{"auth.password_reset", "jan@x.pl", "[redacted]"},
			hidden:     "s3cr3t-reset-token",
		},
		{
			name:       "ordinary event",
			routingKey: OrderCreated,
			payload:    OrderCreatedEvent{OrderID: 3},
			want:       []string{"order.created", `"order_id":3`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := LogPublisher{Logger: log.New(&buf, "", 0)}
			require.NoError(t, p.Publish(context.Background(), tt.routingKey, tt.payload))

			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			if tt.hidden != "" {
				assert.NotContains(t, buf.String(), tt.hidden)
			}
		})
	}
}

func TestPasswordResetRequestedEvent_Redacted(t *testing.T) {
	ev := PasswordResetRequestedEvent{Email: "jan@x.pl", Token: "abc"}
	masked := ev.Redacted().(PasswordResetRequestedEvent)
	assert.Equal(t, "[redacted]", masked.Token)
	assert.Equal(t, "jan@x.pl", masked.Email)
	assert.Equal(t, "abc", ev.Token)
}
