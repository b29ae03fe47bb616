package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeOptions(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patchwork.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOptionsMergesOverDefaults(t *testing.T) {
	path := writeOptions(t, `
curvature = 0.25
force_first_input = true
pinch_threshold = 40.0
ids = "random"
`)
	opts, err := LoadOptions(path)
	require.NoError(t, err)

	require.Equal(t, 0.25, opts.Curvature)
	require.True(t, opts.ForceFirstInput)
	require.Equal(t, 40.0, opts.PinchThreshold)
	require.Equal(t, "random", opts.IDs)

	// Untouched fields keep their defaults.
	def := DefaultOptions()
	require.Equal(t, def.ZoomMax, opts.ZoomMax)
	require.Equal(t, def.Reroute, opts.Reroute)
}

func TestLoadOptionsRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"inverted zoom bounds", "zoom_min = 2.0\nzoom_max = 1.0\n"},
		{"zero zoom step", "zoom_step = 0.0\n"},
		{"unknown id policy", `ids = "guid"` + "\n"},
		{"not toml", "{json: true}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadOptions(writeOptions(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestLoadOptionsMissingFile(t *testing.T) {
	_, err := LoadOptions(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}
