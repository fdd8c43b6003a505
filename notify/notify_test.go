package notify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brokerdeck/go-broker-client/notify"
)

func TestEmitReachesAllListeners(t *testing.T) {
	emitter := notify.NewEmitter()

	var first, second []notify.Notification
	emitter.Subscribe(func(n notify.Notification) { first = append(first, n) })
	emitter.Subscribe(func(n notify.Notification) { second = append(second, n) })

	emitter.Emit("Successfully logged in!", notify.SeveritySuccess, 5*time.Second)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	require.Equal(t, "Successfully logged in!", first[0].Message)
	require.Equal(t, notify.SeveritySuccess, first[0].Severity)
	require.Equal(t, 5*time.Second, first[0].Duration)
	require.NotEmpty(t, first[0].ID)
}

func TestEmitWithoutListeners(t *testing.T) {
	emitter := notify.NewEmitter()

	// Fire-and-forget: emitting into the void must not panic or block.
	emitter.Emit("nobody listening", notify.SeverityInfo, 0)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	emitter := notify.NewEmitter()

	var received []notify.Notification
	unsubscribe := emitter.Subscribe(func(n notify.Notification) { received = append(received, n) })

	emitter.Emit("one", notify.SeverityInfo, 0)
	unsubscribe()
	emitter.Emit("two", notify.SeverityInfo, 0)

	require.Len(t, received, 1)
	require.Equal(t, "one", received[0].Message)

	// Unsubscribing twice is a no-op.
	unsubscribe()
}

func TestZeroDurationMeansPersistent(t *testing.T) {
	emitter := notify.NewEmitter()

	var got notify.Notification
	emitter.Subscribe(func(n notify.Notification) { got = n })

	emitter.Emit("Session expired. Please sign in again.", notify.SeverityWarning, 0)
	require.Zero(t, got.Duration)
}
