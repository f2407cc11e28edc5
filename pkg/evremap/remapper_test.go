package evremap

import (
	"context"
	"errors"
	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"testing"
	"time"
)

var errUnplugged = errors.New("unplugged")

type fakeGateway struct {
	snapshots []KeySnapshot
	batches   [][]evdev.InputEvent

	emitted  [][]evdev.InputEvent
	physical [][]evdev.InputEvent

	onEmpty func()
	// block, when set, makes FetchBatch wait for it to close once the
	// queued batches run out, like a read on an idle keyboard.
	block chan struct{}
}

func (f *fakeGateway) KeyState() (KeySnapshot, error) {
	if len(f.snapshots) == 0 {
		return KeySnapshot{}, nil
	}
	s := f.snapshots[0]
	f.snapshots = f.snapshots[1:]
	return s, nil
}

func (f *fakeGateway) FetchBatch() ([]evdev.InputEvent, error) {
	if len(f.batches) == 0 {
		if f.onEmpty != nil {
			f.onEmpty()
		}
		if f.block != nil {
			<-f.block
		}
		return nil, errUnplugged
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func (f *fakeGateway) SendToPhysical(events []evdev.InputEvent) error {
	f.physical = append(f.physical, events)
	return nil
}

func (f *fakeGateway) EmitBatch(events []evdev.InputEvent) error {
	f.emitted = append(f.emitted, events)
	return nil
}

type fakeJournal struct {
	toggles []bool
	err     error
}

func (f *fakeJournal) RecordToggle(active bool) error {
	f.toggles = append(f.toggles, active)
	return f.err
}

func newTestRemapper(gw *fakeGateway, journal Journal) *Remapper {
	return NewRemapper(gw, testPolicy, DefaultBypass, journal, zap.NewNop().Sugar())
}

func TestStepHotkeyThenRemap(t *testing.T) {
	gw := &fakeGateway{
		batches: [][]evdev.InputEvent{
			{key(evdev.KEY_CAPSLOCK, 1), syn()},
			{key(evdev.KEY_CAPSLOCK, 0), syn()},
			{key(evdev.KEY_Q, 1), syn()},
		},
	}
	journal := &fakeJournal{}
	r := newTestRemapper(gw, journal)

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Step())
	}

	assert.True(t, r.Active())
	assert.Equal(t, [][]evdev.InputEvent{{key(evdev.KEY_APOSTROPHE, 1)}}, gw.emitted)
	require.Len(t, gw.physical, 1)
	assert.Equal(t, evdev.EvType(evdev.EV_LED), gw.physical[0][0].Type)
	assert.Equal(t, []bool{true}, journal.toggles)
}

func TestStepUsesSnapshotForBypass(t *testing.T) {
	gw := &fakeGateway{
		snapshots: []KeySnapshot{{}, {evdev.KEY_LEFTCTRL: true}, {}},
		batches: [][]evdev.InputEvent{
			{key(evdev.KEY_CAPSLOCK, 0), syn()},
			{key(evdev.KEY_C, 1), syn()},
			{key(evdev.KEY_C, 0), syn()},
		},
	}
	r := newTestRemapper(gw, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Step())
	}

	assert.Equal(t, [][]evdev.InputEvent{
		{key(evdev.KEY_C, 1)},
		{key(evdev.KEY_J, 0)},
	}, gw.emitted)
}

func TestStepJournalErrorDoesNotStopRemapping(t *testing.T) {
	gw := &fakeGateway{batches: [][]evdev.InputEvent{{key(evdev.KEY_CAPSLOCK, 0)}, {key(evdev.KEY_W, 1)}}}
	r := newTestRemapper(gw, &fakeJournal{err: errors.New("disk full")})

	require.NoError(t, r.Step())
	require.NoError(t, r.Step())

	assert.Equal(t, [][]evdev.InputEvent{{key(evdev.KEY_COMMA, 1)}}, gw.emitted)
}

func TestRunReturnsGatewayError(t *testing.T) {
	gw := &fakeGateway{batches: [][]evdev.InputEvent{{key(evdev.KEY_A, 1)}}}
	r := newTestRemapper(gw, nil)

	err := r.Run(context.Background())

	assert.ErrorIs(t, err, errUnplugged)
	assert.Len(t, gw.emitted, 1)
}

func TestRunReturnsContextErrorAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gw := &fakeGateway{
		batches: [][]evdev.InputEvent{{key(evdev.KEY_A, 1)}},
		onEmpty: cancel,
	}
	r := newTestRemapper(gw, nil)

	err := r.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReturnsOnCancelWhileFetchBlocks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetching := make(chan struct{})
	gw := &fakeGateway{
		batches: [][]evdev.InputEvent{{key(evdev.KEY_A, 1)}},
		onEmpty: func() { close(fetching) },
		block:   make(chan struct{}),
	}
	defer close(gw.block)
	r := newTestRemapper(gw, nil)

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	<-fetching
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return while the fetch was still blocked")
	}
	assert.Len(t, gw.emitted, 1)
}
