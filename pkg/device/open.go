package device

import (
	"codeberg.org/miketth/evremap/pkg/evremap"
	"errors"
	"fmt"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
)

var (
	ErrDeviceOpen   = errors.New("cannot open input device")
	ErrDeviceGrab   = errors.New("cannot grab input device")
	ErrDeviceCreate = errors.New("cannot create virtual device")
	ErrDeviceIO     = errors.New("input device i/o failed")
)

const busVirtual = 0x06

// evdevDevice adapts *evdev.InputDevice to the gateway's device interfaces.
type evdevDevice struct {
	*evdev.InputDevice
}

func (d evdevDevice) HeldKeys() (evremap.KeySnapshot, error) {
	state, err := d.State(evdev.EV_KEY)
	if err != nil {
		return nil, err
	}

	snapshot := make(evremap.KeySnapshot)
	for code, held := range state {
		if held {
			snapshot[code] = true
		}
	}
	return snapshot, nil
}

// OpenPhysical opens a keyboard device node. Nodes that cannot report key
// events are rejected.
func OpenPhysical(path string) (*evdev.InputDevice, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDeviceOpen, path, err)
	}

	for _, t := range dev.CapableTypes() {
		if t == evdev.EV_KEY {
			return dev, nil
		}
	}

	dev.Close()
	return nil, fmt.Errorf("%w %s: no key events", ErrDeviceOpen, path)
}

// KeyCapabilities declares every key code up to KEY_MAX so any remapped code
// can be emitted.
func KeyCapabilities() map[evdev.EvType][]evdev.EvCode {
	codes := make([]evdev.EvCode, 0, evdev.KEY_MAX+1)
	for code := evdev.EvCode(0); code <= evdev.KEY_MAX; code++ {
		codes = append(codes, code)
	}
	return map[evdev.EvType][]evdev.EvCode{evdev.EV_KEY: codes}
}

func CreateVirtual(name string, capabilities map[evdev.EvType][]evdev.EvCode) (*evdev.InputDevice, error) {
	dev, err := evdev.CreateDevice(name, evdev.InputID{BusType: busVirtual, Version: 1}, capabilities)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrDeviceCreate, name, err)
	}
	return dev, nil
}

var (
	openDevice = func(path string) (physicalDevice, error) {
		dev, err := OpenPhysical(path)
		if err != nil {
			return nil, err
		}
		return evdevDevice{dev}, nil
	}

	createDevice = func(name string, capabilities map[evdev.EvType][]evdev.EvCode) (virtualDevice, error) {
		dev, err := CreateVirtual(name, capabilities)
		if err != nil {
			return nil, err
		}
		return evdevDevice{dev}, nil
	}
)

// Acquire opens and grabs the physical device and creates the virtual one.
// Whatever was acquired is released again if a later step fails.
func Acquire(path, virtualName string, log *zap.SugaredLogger) (*Gateway, error) {
	physical, err := openDevice(path)
	if err != nil {
		return nil, err
	}

	if err := physical.Grab(); err != nil {
		physical.Close()
		return nil, fmt.Errorf("%w %s: %w", ErrDeviceGrab, path, err)
	}

	virtual, err := createDevice(virtualName, KeyCapabilities())
	if err != nil {
		_ = physical.Ungrab()
		physical.Close()
		return nil, err
	}

	name, err := physical.Name()
	if err != nil {
		name = path
	}
	log.Infow("acquired keyboard", "device", path, "name", name, "virtual", virtualName)

	return newGateway(physical, virtual, log), nil
}
