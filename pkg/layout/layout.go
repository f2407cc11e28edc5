package layout

import (
	"errors"
	"fmt"
	"github.com/holoplot/go-evdev"
	"sort"
)

var (
	ErrUnknownLayout = errors.New("unknown layout")
	ErrNotBijective  = errors.New("layout table is not a bijection")
)

// Table maps physical QWERTY key positions to the key codes the target
// layout would produce at the same position. Codes not in the table map to
// themselves.
type Table struct {
	Name    string
	Layout  string // xkb layout code, e.g. "us"
	Variant string // xkb variant code, e.g. "dvorak"

	subs map[evdev.EvCode]evdev.EvCode
}

func newTable(name, layout, variant string, subs map[evdev.EvCode]evdev.EvCode) *Table {
	t := &Table{Name: name, Layout: layout, Variant: variant, subs: subs}
	if err := t.Validate(); err != nil {
		panic(fmt.Sprintf("layout %s: %v", name, err))
	}
	return t
}

func (t *Table) Remap(code evdev.EvCode) evdev.EvCode {
	if out, ok := t.subs[code]; ok {
		return out
	}
	return code
}

// Covered returns the codes the table has entries for, sorted.
func (t *Table) Covered() []evdev.EvCode {
	out := make([]evdev.EvCode, 0, len(t.subs))
	for code := range t.subs {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks that the covered block maps onto itself without collisions.
func (t *Table) Validate() error {
	seen := make(map[evdev.EvCode]evdev.EvCode, len(t.subs))
	for in, out := range t.subs {
		if prev, ok := seen[out]; ok {
			return fmt.Errorf("%w: %s and %s both map to %s", ErrNotBijective, codeName(prev), codeName(in), codeName(out))
		}
		if _, ok := t.subs[out]; !ok {
			return fmt.Errorf("%w: %s maps outside the table to %s", ErrNotBijective, codeName(in), codeName(out))
		}
		seen[out] = in
	}
	return nil
}

func codeName(code evdev.EvCode) string {
	if name, ok := evdev.KEYToString[code]; ok {
		return name
	}
	return fmt.Sprintf("%d", code)
}

var builtin = []*Table{Dvorak, Colemak}

func Builtin() []*Table {
	out := make([]*Table, len(builtin))
	copy(out, builtin)
	return out
}

func Lookup(name string) (*Table, error) {
	for _, t := range builtin {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
}

// LookupXkb finds the built-in table for an xkb layout/variant pair.
func LookupXkb(layout, variant string) (*Table, error) {
	for _, t := range builtin {
		if t.Layout == layout && t.Variant == variant {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: xkb %s(%s)", ErrUnknownLayout, layout, variant)
}
