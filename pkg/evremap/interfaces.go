package evremap

import "github.com/holoplot/go-evdev"

// Source is the physical side of the device gateway.
type Source interface {
	KeyState() (KeySnapshot, error)
	FetchBatch() ([]evdev.InputEvent, error)
	SendToPhysical(events []evdev.InputEvent) error
}

// Sink is the virtual side of the device gateway. It terminates every
// batch with its own SYN_REPORT.
type Sink interface {
	EmitBatch(events []evdev.InputEvent) error
}

type Gateway interface {
	Source
	Sink
}

type Journal interface {
	RecordToggle(active bool) error
}

type Remap interface {
	Remap(code evdev.EvCode) evdev.EvCode
}
