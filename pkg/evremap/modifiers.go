package evremap

import "github.com/holoplot/go-evdev"

// KeySnapshot is the set of keys reported as held at query time.
type KeySnapshot map[evdev.EvCode]bool

// BypassSet lists the modifiers that suspend remapping while held, so that
// shortcuts keep their physical meaning.
type BypassSet []evdev.EvCode

var DefaultBypass = BypassSet{evdev.KEY_LEFTCTRL, evdev.KEY_RIGHTCTRL}

func (b BypassSet) Active(snapshot KeySnapshot) bool {
	for _, code := range b {
		if snapshot[code] {
			return true
		}
	}
	return false
}
