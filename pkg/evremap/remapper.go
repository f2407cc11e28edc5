package evremap

import (
	"context"
	"fmt"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
)

type Remapper struct {
	toggle Toggle
	policy Policy
	bypass BypassSet

	gateway Gateway
	journal Journal
	log     *zap.SugaredLogger
}

// NewRemapper builds the event loop. journal may be nil.
func NewRemapper(
	gateway Gateway,
	policy Policy,
	bypass BypassSet,
	journal Journal,
	log *zap.SugaredLogger,
) *Remapper {
	return &Remapper{
		policy:  policy,
		bypass:  bypass,
		gateway: gateway,
		journal: journal,
		log:     log,
	}
}

// Active reports whether the target layout is currently applied.
func (r *Remapper) Active() bool {
	return r.toggle.Active()
}

type fetchResult struct {
	bypass bool
	batch  []evdev.InputEvent
	err    error
}

// Run processes batches until the gateway fails or ctx is cancelled. The
// blocking fetch runs in its own goroutine, so cancellation does not wait
// for the next key press.
func (r *Remapper) Run(ctx context.Context) error {
	for {
		resultCh := make(chan fetchResult, 1)
		go func() {
			bypass, batch, err := r.fetch()
			resultCh <- fetchResult{bypass: bypass, batch: batch, err: err}
		}()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-resultCh:
			if res.err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return res.err
			}
			if err := r.process(res.bypass, res.batch); err != nil {
				return err
			}
		}
	}
}

// Step runs one snapshot, fetch, translate, emit cycle.
func (r *Remapper) Step() error {
	bypass, batch, err := r.fetch()
	if err != nil {
		return err
	}
	return r.process(bypass, batch)
}

func (r *Remapper) fetch() (bool, []evdev.InputEvent, error) {
	snapshot, err := r.gateway.KeyState()
	if err != nil {
		return false, nil, fmt.Errorf("read key state: %w", err)
	}
	// The snapshot may already be stale by the time the batch arrives.
	bypass := r.bypass.Active(snapshot)

	batch, err := r.gateway.FetchBatch()
	if err != nil {
		return false, nil, fmt.Errorf("fetch batch: %w", err)
	}

	return bypass, batch, nil
}

func (r *Remapper) process(bypass bool, batch []evdev.InputEvent) error {
	out, leds := Translate(batch, bypass, &r.toggle, r.policy)
	r.log.Debugw("batch", "in", len(batch), "out", len(out), "bypass", bypass, "active", r.toggle.Active())

	if len(leds) > 0 {
		if err := r.gateway.SendToPhysical(leds); err != nil {
			return fmt.Errorf("sync led: %w", err)
		}
		r.recordToggles(leds)
	}

	if len(out) == 0 {
		return nil
	}

	if err := r.gateway.EmitBatch(out); err != nil {
		return fmt.Errorf("emit batch: %w", err)
	}

	return nil
}

func (r *Remapper) recordToggles(leds []evdev.InputEvent) {
	for _, led := range leds {
		active := led.Value != ledOff
		r.log.Infow("layout toggled", "active", active)

		if r.journal == nil {
			continue
		}
		if err := r.journal.RecordToggle(active); err != nil {
			r.log.Warnw("record toggle", "error", err)
		}
	}
}
