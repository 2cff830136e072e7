package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/tea-dunker/internal/motion"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, 2, c.DunksBefore)
	assert.Equal(t, 3, c.DunksAfter)
	assert.Equal(t, 5, c.SteepMinutes)
	assert.Equal(t, 50, c.Brightness)
	assert.Equal(t, 300*time.Millisecond, c.ClockTick)
	assert.Equal(t, 100*time.Millisecond, c.Settle)
	assert.Equal(t, 200*time.Millisecond, c.SelectSettle)
	assert.Equal(t, 500*time.Millisecond, c.StartBlink)
	assert.Equal(t, 500*time.Millisecond, c.Rest)
	assert.Equal(t, Timing{Arm: 400 * time.Millisecond, Dunker: 1500 * time.Millisecond}, c.PreDip)
	assert.Equal(t, Timing{Arm: 200 * time.Millisecond, Dunker: 500 * time.Millisecond}, c.PostDip)
	assert.Equal(t, motion.DefaultPoses, c.MotionPoses())
	assert.Equal(t, 544, c.MinPulseUs)
	assert.Equal(t, 2400, c.MaxPulseUs)
	require.NoError(t, c.Validate())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		errMsg  string
		check   func(t *testing.T, c Calibration)
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			check: func(t *testing.T, c Calibration) {
				assert.Equal(t, Default(), c)
			},
		},
		{
			name: "partial override",
			yaml: `
dunks_before: 4
clock_tick: 250ms
post_dip:
  arm: 300ms
poses:
  low_dip:
    dunker: 75
`,
			check: func(t *testing.T, c Calibration) {
				assert.Equal(t, 4, c.DunksBefore)
				assert.Equal(t, 3, c.DunksAfter)
				assert.Equal(t, 250*time.Millisecond, c.ClockTick)
				assert.Equal(t, 300*time.Millisecond, c.PostDip.Arm)
				assert.Equal(t, 500*time.Millisecond, c.PostDip.Dunker)
				assert.Equal(t, 75, c.Poses.LowDip.Dunker)
				assert.Equal(t, 70, c.Poses.LowDip.Arm)
			},
		},
		{
			name: "pulse range for factory channel limits",
			yaml: "min_pulse_us: 992\nmax_pulse_us: 2000\n",
			check: func(t *testing.T, c Calibration) {
				assert.Equal(t, 992, c.MinPulseUs)
				assert.Equal(t, 2000, c.MaxPulseUs)
			},
		},
		{
			name:    "inverted pulse range",
			yaml:    "min_pulse_us: 2000\nmax_pulse_us: 1000\n",
			wantErr: true,
			errMsg:  "max_pulse_us",
		},
		{
			name:    "zero min pulse",
			yaml:    "min_pulse_us: 0\n",
			wantErr: true,
			errMsg:  "min_pulse_us",
		},
		{
			name:    "unknown key",
			yaml:    "dunks_during: 1\n",
			wantErr: true,
			errMsg:  "dunks_during",
		},
		{
			name:    "steep minutes out of range",
			yaml:    "steep_minutes: 0\n",
			wantErr: true,
			errMsg:  "steep_minutes",
		},
		{
			name:    "angle out of range",
			yaml:    "poses:\n  rest:\n    arm: 200\n",
			wantErr: true,
			errMsg:  "poses.rest.arm",
		},
		{
			name:    "negative dunks",
			yaml:    "dunks_after: -1\n",
			wantErr: true,
			errMsg:  "dunks_after",
		},
		{
			name:    "zero tick",
			yaml:    "clock_tick: 0s\n",
			wantErr: true,
			errMsg:  "clock_tick",
		},
		{
			name:    "negative duration",
			yaml:    "pre_dip:\n  dunker: -1s\n",
			wantErr: true,
			errMsg:  "pre_dip.dunker",
		},
		{
			name:    "malformed",
			yaml:    "dunks_before: [\n",
			wantErr: true,
			errMsg:  "decode calibration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse(strings.NewReader(tt.yaml))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, c)
			}
		})
	}
}

func TestValidateWrapsErrInvalid(t *testing.T) {
	c := Default()
	c.Brightness = 101
	c.DunksBefore = -2

	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "brightness")
	assert.Contains(t, err.Error(), "dunks_before")
}

func TestLoad(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), c)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dunker.yaml")
		require.NoError(t, os.WriteFile(path, []byte("steep_minutes: 3\n"), 0o644))

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 3, c.SteepMinutes)
	})

	t.Run("invalid file names path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("brightness: 500\n"), 0o644))

		_, err := Load(path)
		require.ErrorIs(t, err, ErrInvalid)
		assert.Contains(t, err.Error(), path)
	})
}

func TestWatchDeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dunker.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steep_minutes: 3\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := Watch(ctx, path)
	require.NoError(t, err)

	// An invalid write is skipped, a later valid one is delivered.
	require.NoError(t, os.WriteFile(path, []byte("steep_minutes: 12\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("steep_minutes: 7\n"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-ch:
			if c.SteepMinutes == 7 {
				cancel()
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dunker.yaml")
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := Watch(ctx, path)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "expected channel to be closed")
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "dunker.yaml"))
	require.Error(t, err)
}
