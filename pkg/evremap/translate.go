package evremap

import (
	"github.com/holoplot/go-evdev"
	"math"
)

const (
	keyRelease = 0

	ledOn  = math.MaxInt32
	ledOff = 0
)

// Policy is the fixed part of the per-event classification.
type Policy struct {
	Table  Remap
	Hotkey evdev.EvCode
	LED    evdev.EvCode
}

// Translate classifies one batch. bypass is computed from the snapshot
// taken before the batch was fetched. The returned events keep their input
// order. Every hotkey release yields one LED event for the physical device
// carrying the new toggle value.
func Translate(batch []evdev.InputEvent, bypass bool, toggle *Toggle, policy Policy) (out, leds []evdev.InputEvent) {
	out = make([]evdev.InputEvent, 0, len(batch))

	for _, ev := range batch {
		switch {
		case ev.Type == evdev.EV_SYN:
			continue

		case ev.Type == evdev.EV_KEY && ev.Code == policy.Hotkey:
			if ev.Value != keyRelease {
				continue
			}
			brightness := int32(ledOff)
			if toggle.OnHotkeyRelease() {
				brightness = ledOn
			}
			leds = append(leds, evdev.InputEvent{Type: evdev.EV_LED, Code: policy.LED, Value: brightness})

		case bypass || !toggle.Active():
			out = append(out, ev)

		case ev.Type == evdev.EV_KEY:
			ev.Code = policy.Table.Remap(ev.Code)
			out = append(out, ev)

		default:
			out = append(out, ev)
		}
	}

	return out, leds
}
