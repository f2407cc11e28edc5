package main

import (
	"bytes"
	"codeberg.org/miketth/evremap/pkg/journal"
	"codeberg.org/miketth/evremap/pkg/journal/sqlite"
	"codeberg.org/miketth/evremap/pkg/layout"
	"codeberg.org/miketth/evremap/pkg/xkblayouts"
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPrintLayouts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printLayouts(&buf, layout.Builtin()))

	out := buf.String()
	assert.Contains(t, out, "dvorak")
	assert.Contains(t, out, "us(colemak)")
}

func TestPrintSessions(t *testing.T) {
	started := time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local)
	ended := started.Add(90 * time.Minute)

	var buf bytes.Buffer
	require.NoError(t, printSessions(&buf, []journal.Session{
		{ID: 2, Device: "/dev/input/event4", Layout: "colemak", StartedAt: started.Add(2 * time.Hour)},
		{ID: 1, Device: "/dev/input/event3", Layout: "dvorak", StartedAt: started, EndedAt: &ended, Toggles: 4},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "running")
	assert.Contains(t, lines[2], "1h30m0s")
	assert.True(t, strings.HasSuffix(lines[2], "4"))
}

func TestShowHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	log := zap.NewNop().Sugar()

	store, err := sqlite.NewJournal(path, log)
	require.NoError(t, err)
	require.NoError(t, store.StartSession("/dev/input/event3", "dvorak"))
	require.NoError(t, store.RecordToggle(true))
	require.NoError(t, store.Close())

	var buf bytes.Buffer
	require.NoError(t, showHistory(context.Background(), &buf, path, 10, log))
	assert.Contains(t, buf.String(), "/dev/input/event3")
}

func TestDescribeLayout(t *testing.T) {
	assert.Equal(t, "dvorak", describeLayout(layout.Dvorak, nil))

	registry, err := xkblayouts.DecodeRegistry(strings.NewReader(`<xkbConfigRegistry><layoutList><layout>
		<configItem><name>us</name><description>English (US)</description></configItem>
		<variantList><variant><configItem><name>dvorak</name><description>English (Dvorak)</description></configItem></variant></variantList>
	</layout></layoutList></xkbConfigRegistry>`))
	require.NoError(t, err)

	assert.Equal(t, "English (Dvorak)", describeLayout(layout.Dvorak, registry))
	assert.Equal(t, "colemak", describeLayout(layout.Colemak, registry))
}

func TestRootCmdRequiresDevice(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}
