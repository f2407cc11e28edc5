package device

import (
	"codeberg.org/miketth/evremap/pkg/evremap"
	"errors"
	"fmt"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
	"slices"
	"sync"
)

type physicalDevice interface {
	ReadOne() (*evdev.InputEvent, error)
	WriteOne(event *evdev.InputEvent) error
	HeldKeys() (evremap.KeySnapshot, error)
	Name() (string, error)
	Grab() error
	Ungrab() error
	Close() error
}

type virtualDevice interface {
	WriteOne(event *evdev.InputEvent) error
	Close() error
}

// Gateway owns the grabbed physical keyboard and the virtual keyboard that
// replaces it.
type Gateway struct {
	physical physicalDevice
	virtual  virtualDevice
	log      *zap.SugaredLogger

	// keys reported as down by the batches handed out so far
	delivered map[evdev.EvCode]bool

	closeOnce sync.Once
	closeErr  error
}

var _ evremap.Gateway = (*Gateway)(nil)

const (
	keyReleased = 0
	keyPressed  = 1
)

func newGateway(physical physicalDevice, virtual virtualDevice, log *zap.SugaredLogger) *Gateway {
	return &Gateway{
		physical:  physical,
		virtual:   virtual,
		log:       log,
		delivered: make(map[evdev.EvCode]bool),
	}
}

func (g *Gateway) KeyState() (evremap.KeySnapshot, error) {
	snapshot, err := g.physical.HeldKeys()
	if err != nil {
		return nil, fmt.Errorf("%w: key state: %w", ErrDeviceIO, err)
	}
	return snapshot, nil
}

// FetchBatch blocks until an event arrives, then reads through the next
// SYN_REPORT. The report itself is the last element of the batch. Packets
// the kernel reports as dropped are discarded, and the batch that follows
// them carries synthetic key events bringing the consumer back in line with
// the device's actual key state.
func (g *Gateway) FetchBatch() ([]evdev.InputEvent, error) {
	var batch []evdev.InputEvent
	dropping := false

	for {
		ev, err := g.physical.ReadOne()
		if err != nil {
			return nil, fmt.Errorf("%w: read: %w", ErrDeviceIO, err)
		}

		if ev.Type == evdev.EV_SYN {
			switch ev.Code {
			case evdev.SYN_DROPPED:
				g.log.Warnw("kernel dropped events, discarding packet", "discarded", len(batch))
				batch = batch[:0]
				dropping = true
				continue
			case evdev.SYN_REPORT:
				if dropping {
					dropping = false
					resync, err := g.resync()
					if err != nil {
						return nil, err
					}
					if len(resync) == 0 {
						continue
					}
					batch = resync
				}
				batch = append(batch, *ev)
				g.track(batch)
				return batch, nil
			}
		}

		if dropping {
			continue
		}
		batch = append(batch, *ev)
	}
}

// resync compares the keys handed out so far with the device's key state
// and returns releases for keys no longer held followed by presses for keys
// that went down unseen, both in code order.
func (g *Gateway) resync() ([]evdev.InputEvent, error) {
	held, err := g.KeyState()
	if err != nil {
		return nil, err
	}

	var released, pressed []evdev.EvCode
	for code := range g.delivered {
		if !held[code] {
			released = append(released, code)
		}
	}
	for code := range held {
		if !g.delivered[code] {
			pressed = append(pressed, code)
		}
	}
	slices.Sort(released)
	slices.Sort(pressed)

	events := make([]evdev.InputEvent, 0, len(released)+len(pressed))
	for _, code := range released {
		events = append(events, evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: keyReleased})
	}
	for _, code := range pressed {
		events = append(events, evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: keyPressed})
	}

	if len(events) > 0 {
		g.log.Infow("resynchronised key state after drop", "released", len(released), "pressed", len(pressed))
	}
	return events, nil
}

func (g *Gateway) track(batch []evdev.InputEvent) {
	for _, ev := range batch {
		if ev.Type != evdev.EV_KEY {
			continue
		}
		if ev.Value == keyReleased {
			delete(g.delivered, ev.Code)
		} else {
			g.delivered[ev.Code] = true
		}
	}
}

// EmitBatch writes events to the virtual device and terminates them with a
// SYN_REPORT. An empty batch writes nothing.
func (g *Gateway) EmitBatch(events []evdev.InputEvent) error {
	if len(events) == 0 {
		return nil
	}

	for i := range events {
		if err := g.virtual.WriteOne(&events[i]); err != nil {
			return fmt.Errorf("%w: emit: %w", ErrDeviceIO, err)
		}
	}

	report := evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT}
	if err := g.virtual.WriteOne(&report); err != nil {
		return fmt.Errorf("%w: emit sync: %w", ErrDeviceIO, err)
	}

	return nil
}

// SendToPhysical writes events back to the physical keyboard. It is meant
// for LED state, not key injection.
func (g *Gateway) SendToPhysical(events []evdev.InputEvent) error {
	for i := range events {
		if err := g.physical.WriteOne(&events[i]); err != nil {
			return fmt.Errorf("%w: write physical: %w", ErrDeviceIO, err)
		}
	}
	return nil
}

// Close ungrabs the physical keyboard and destroys the virtual one. It is
// safe to call more than once and from another goroutine than the reader.
func (g *Gateway) Close() error {
	g.closeOnce.Do(func() {
		var errs []error
		if err := g.physical.Ungrab(); err != nil {
			errs = append(errs, fmt.Errorf("ungrab: %w", err))
		}
		if err := g.physical.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close physical: %w", err))
		}
		if err := g.virtual.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close virtual: %w", err))
		}
		g.closeErr = errors.Join(errs...)
		g.log.Debugw("released keyboard", "error", g.closeErr)
	})
	return g.closeErr
}
