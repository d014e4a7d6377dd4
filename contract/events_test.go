package contract

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vesta_dao/event"
	"vesta_dao/sdk"
)

func drain(ch <-chan event.Event) []event.Event {
	var out []event.Event
	for {
		select {
		case evt := <-ch:
			out = append(out, evt)
		case <-time.After(20 * time.Millisecond):
			return out
		}
	}
}

func TestEventsPublishOnCommit(t *testing.T) {
	bus := event.NewBus(prometheus.NewRegistry())
	defer bus.Stop()
	e := New(sdk.NewMemState(), WithBus(bus))
	_, transfers := bus.Subscribe(EventTransfer)

	_, err := e.CreateDAO(envAt(alice, 10), baseConfig(), map[sdk.Address]Amount{alice: 100})
	require.NoError(t, err)

	require.NoError(t, e.Transfer(envAt(alice, 20), bob, GovernanceClass, 25))
	evts := drain(transfers)
	require.Len(t, evts, 1)
	data, ok := evts[0].Data.(TransferData)
	require.True(t, ok)
	assert.Equal(t, alice, data.From)
	assert.Equal(t, bob, data.To)
	assert.Equal(t, Amount(25), data.Amount)
}

func TestNoEventsOnFailedCall(t *testing.T) {
	bus := event.NewBus(prometheus.NewRegistry())
	defer bus.Stop()
	e := New(sdk.NewMemState(), WithBus(bus))
	_, transfers := bus.Subscribe(EventTransfer)

	_, err := e.CreateDAO(envAt(alice, 10), baseConfig(), map[sdk.Address]Amount{alice: 100})
	require.NoError(t, err)

	err = e.Transfer(envAt(alice, 20), bob, GovernanceClass, 1000)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Empty(t, drain(transfers))
}
