package editor

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/dverbeek/patchwork/pkg/graph"
)

// Options tunes interaction and rendering behavior. Zero values are not
// meaningful defaults; start from DefaultOptions and override.
type Options struct {
	// Curvature shapes plain connection paths (no reroute points).
	Curvature float64 `toml:"curvature"`

	// RerouteCurvature shapes the interior segments of rerouted paths,
	// RerouteCurvatureStartEnd the first and last segments.
	RerouteCurvature         float64 `toml:"reroute_curvature"`
	RerouteCurvatureStartEnd float64 `toml:"reroute_curvature_start_end"`

	// Reroute enables double-click insertion and removal of path points.
	Reroute bool `toml:"reroute"`

	// ForceFirstInput routes a connection drag released over a node body to
	// the node's lowest-numbered free input instead of cancelling.
	ForceFirstInput bool `toml:"force_first_input"`

	// ZoomMax, ZoomMin and ZoomStep bound and step the zoom level.
	ZoomMax  float64 `toml:"zoom_max"`
	ZoomMin  float64 `toml:"zoom_min"`
	ZoomStep float64 `toml:"zoom_step"`

	// PinchThreshold is the distance change, in screen units from the
	// two-finger baseline, below which a pinch gesture does not zoom.
	// Zero disables the dead zone.
	PinchThreshold float64 `toml:"pinch_threshold"`

	// IDs selects node id generation: "sequential" or "random".
	IDs string `toml:"ids"`
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		Curvature:                0.5,
		RerouteCurvature:         0.5,
		RerouteCurvatureStartEnd: 0.5,
		Reroute:                  true,
		ForceFirstInput:          false,
		ZoomMax:                  1.6,
		ZoomMin:                  0.5,
		ZoomStep:                 0.1,
		PinchThreshold:           100,
		IDs:                      "sequential",
	}
}

// LoadOptions reads a TOML file over the defaults, so partial files only
// override what they name.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return Options{}, fmt.Errorf("load options %s: %w", path, err)
	}
	if err := opts.validate(); err != nil {
		return Options{}, fmt.Errorf("load options %s: %w", path, err)
	}
	return opts, nil
}

func (o Options) validate() error {
	if o.ZoomMin <= 0 || o.ZoomMax < o.ZoomMin {
		return fmt.Errorf("zoom bounds %g..%g are invalid", o.ZoomMin, o.ZoomMax)
	}
	if o.ZoomStep <= 0 {
		return fmt.Errorf("zoom step %g must be positive", o.ZoomStep)
	}
	if o.IDs != "sequential" && o.IDs != "random" {
		return fmt.Errorf("unknown id policy %q", o.IDs)
	}
	return nil
}

func (o Options) idPolicy() graph.IDPolicy {
	if o.IDs == "random" {
		return graph.IDRandom
	}
	return graph.IDSequential
}
