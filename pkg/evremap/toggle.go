package evremap

// Toggle says whether the target layout is applied. The zero value is
// inactive.
type Toggle struct {
	active bool
}

func (t *Toggle) Active() bool {
	return t.active
}

// OnHotkeyRelease flips the toggle and returns the new value.
func (t *Toggle) OnHotkeyRelease() bool {
	t.active = !t.active
	return t.active
}
