package config

import (
	"codeberg.org/miketth/evremap/pkg/evremap"
	"codeberg.org/miketth/evremap/pkg/layout"
	"codeberg.org/miketth/evremap/pkg/xkblayouts"
	"errors"
	"fmt"
	"github.com/adrg/xdg"
	"github.com/holoplot/go-evdev"
	"github.com/spf13/viper"
	"path/filepath"
	"strings"
)

var ErrConfiguration = errors.New("invalid configuration")

const appName = "evremap"

// Config is the validated daemon configuration.
type Config struct {
	Device       string
	Layout       string
	Hotkey       evdev.EvCode
	Bypass       evremap.BypassSet
	DeviceName   string
	Journal      string
	NoJournal    bool
	EvdevXMLPath string
	Debug        bool
}

type rawConfig struct {
	Layout       string   `mapstructure:"layout"`
	Hotkey       string   `mapstructure:"hotkey"`
	Bypass       []string `mapstructure:"bypass"`
	DeviceName   string   `mapstructure:"device_name"`
	Journal      string   `mapstructure:"journal"`
	NoJournal    bool     `mapstructure:"no_journal"`
	EvdevXMLPath string   `mapstructure:"evdev_xml_path"`
	Debug        bool     `mapstructure:"debug"`
}

// NewViper returns a viper instance reading EVREMAP_* variables and an
// optional config file from configDirs, or from the xdg config directory
// when none are given.
func NewViper(configDirs ...string) *viper.Viper {
	v := viper.New()

	if len(configDirs) == 0 {
		configDirs = []string{filepath.Join(xdg.ConfigHome, appName)}
	}
	v.SetConfigName("config")
	for _, dir := range configDirs {
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("layout", layout.Dvorak.Name)
	v.SetDefault("hotkey", "KEY_CAPSLOCK")
	v.SetDefault("bypass", []string{"KEY_LEFTCTRL", "KEY_RIGHTCTRL"})
	v.SetDefault("device_name", appName+" virtual keyboard")
	v.SetDefault("journal", "")
	v.SetDefault("no_journal", false)
	v.SetDefault("evdev_xml_path", "/usr/share/X11/xkb/rules/evdev.xml")
	v.SetDefault("debug", false)

	return v
}

// Load reads the config file, if there is one, and validates the merged
// settings for the given device path.
func Load(v *viper.Viper, device string) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("%w: read config file: %w", ErrConfiguration, err)
		}
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	device = strings.TrimSpace(device)
	if device == "" {
		return Config{}, fmt.Errorf("%w: missing device path", ErrConfiguration)
	}

	hotkey, err := ParseKey(raw.Hotkey)
	if err != nil {
		return Config{}, fmt.Errorf("hotkey: %w", err)
	}

	bypass := make(evremap.BypassSet, 0, len(raw.Bypass))
	for _, name := range raw.Bypass {
		code, err := ParseKey(name)
		if err != nil {
			return Config{}, fmt.Errorf("bypass: %w", err)
		}
		if code == hotkey {
			return Config{}, fmt.Errorf("%w: hotkey %s cannot be a bypass key", ErrConfiguration, name)
		}
		bypass = append(bypass, code)
	}

	if raw.DeviceName == "" {
		return Config{}, fmt.Errorf("%w: empty virtual device name", ErrConfiguration)
	}

	return Config{
		Device:       device,
		Layout:       raw.Layout,
		Hotkey:       hotkey,
		Bypass:       bypass,
		DeviceName:   raw.DeviceName,
		Journal:      raw.Journal,
		NoJournal:    raw.NoJournal,
		EvdevXMLPath: raw.EvdevXMLPath,
		Debug:        raw.Debug,
	}, nil
}

var keysByName = func() map[string]evdev.EvCode {
	out := make(map[string]evdev.EvCode, len(evdev.KEYToString))
	for code, name := range evdev.KEYToString {
		out[name] = code
	}
	return out
}()

// ParseKey accepts kernel key names with or without the KEY_ prefix, in any
// case: "KEY_CAPSLOCK", "capslock".
func ParseKey(name string) (evdev.EvCode, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if !strings.HasPrefix(upper, "KEY_") && !strings.HasPrefix(upper, "BTN_") {
		upper = "KEY_" + upper
	}

	code, ok := keysByName[upper]
	if !ok {
		return 0, fmt.Errorf("%w: unknown key %q", ErrConfiguration, name)
	}
	return code, nil
}

// ResolveLayout finds a built-in table by name, or by its xkb description
// when a registry is available.
func ResolveLayout(name string, registry *xkblayouts.Registry) (*layout.Table, error) {
	table, err := layout.Lookup(name)
	if err == nil {
		return table, nil
	}

	if registry != nil {
		if xkbLayout, variant, ok := registry.Resolve(name); ok {
			if table, err := layout.LookupXkb(xkbLayout, variant); err == nil {
				return table, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
}

// DefaultJournalPath returns the journal location under the xdg data
// directory, creating the parent directory.
func DefaultJournalPath() (string, error) {
	path, err := xdg.DataFile(filepath.Join(appName, "journal.db"))
	if err != nil {
		return "", fmt.Errorf("get journal path: %w", err)
	}
	return path, nil
}
