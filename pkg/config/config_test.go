package config

import (
	"codeberg.org/miketth/evremap/pkg/evremap"
	"codeberg.org/miketth/evremap/pkg/layout"
	"codeberg.org/miketth/evremap/pkg/xkblayouts"
	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(NewViper(t.TempDir()), "/dev/input/event3")
	require.NoError(t, err)

	assert.Equal(t, "/dev/input/event3", cfg.Device)
	assert.Equal(t, "dvorak", cfg.Layout)
	assert.Equal(t, evdev.EvCode(evdev.KEY_CAPSLOCK), cfg.Hotkey)
	assert.Equal(t, evremap.DefaultBypass, cfg.Bypass)
	assert.Equal(t, "evremap virtual keyboard", cfg.DeviceName)
	assert.False(t, cfg.NoJournal)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
layout = "colemak"
hotkey = "scrolllock"
bypass = ["KEY_LEFTALT"]
`), 0o644))
	t.Setenv("EVREMAP_DEVICE_NAME", "test keyboard")

	cfg, err := Load(NewViper(dir), "/dev/input/by-id/usb-kbd-event-kbd")
	require.NoError(t, err)

	assert.Equal(t, "colemak", cfg.Layout)
	assert.Equal(t, evdev.EvCode(evdev.KEY_SCROLLLOCK), cfg.Hotkey)
	assert.Equal(t, evremap.BypassSet{evdev.KEY_LEFTALT}, cfg.Bypass)
	assert.Equal(t, "test keyboard", cfg.DeviceName)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(NewViper(t.TempDir()), "  ")
	assert.ErrorIs(t, err, ErrConfiguration)

	v := NewViper(t.TempDir())
	v.Set("hotkey", "KEY_NOPE")
	_, err = Load(v, "/dev/input/event3")
	assert.ErrorIs(t, err, ErrConfiguration)

	v = NewViper(t.TempDir())
	v.Set("bypass", []string{"KEY_CAPSLOCK"})
	_, err = Load(v, "/dev/input/event3")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestParseKey(t *testing.T) {
	for _, name := range []string{"KEY_CAPSLOCK", "capslock", " CapsLock "} {
		code, err := ParseKey(name)
		require.NoError(t, err, name)
		assert.Equal(t, evdev.EvCode(evdev.KEY_CAPSLOCK), code)
	}

	_, err := ParseKey("hyper")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestResolveLayout(t *testing.T) {
	table, err := ResolveLayout("colemak", nil)
	require.NoError(t, err)
	assert.Same(t, layout.Colemak, table)

	registry, err := xkblayouts.DecodeRegistry(strings.NewReader(`<xkbConfigRegistry><layoutList><layout>
		<configItem><name>us</name><description>English (US)</description></configItem>
		<variantList><variant><configItem><name>dvorak</name><description>English (Dvorak)</description></configItem></variant></variantList>
	</layout></layoutList></xkbConfigRegistry>`))
	require.NoError(t, err)

	table, err = ResolveLayout("English (Dvorak)", registry)
	require.NoError(t, err)
	assert.Same(t, layout.Dvorak, table)

	_, err = ResolveLayout("English (US)", registry)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.ErrorIs(t, err, layout.ErrUnknownLayout)
}
