// Package config loads host-provided configuration for the visualization
// core: the layout options (spec.md §4.6), the style tables for nodes,
// edges, and containers, and the orchestrator's debounce window (spec.md
// §6, "Configuration"). It is a closed option set the same way
// pkg/layout.Options is — unknown keys are rejected rather than ignored.
package config

import (
	"time"

	"github.com/BurntSushi/toml"

	"github.com/hydro-project/flowviz/pkg/flowerrors"
	"github.com/hydro-project/flowviz/pkg/layout"
	"github.com/hydro-project/flowviz/pkg/model"
)

// Config is the full host-provided configuration document.
type Config struct {
	Layout     LayoutConfig      `toml:"layout"`
	Styles     map[string]string `toml:"styles"`
	DebounceMS int               `toml:"debounce_ms"`
}

// LayoutConfig mirrors layout.Options field-for-field in TOML form.
type LayoutConfig struct {
	Direction    string  `toml:"direction"`
	Algorithm    string  `toml:"algorithm"`
	NodeSpacing  float64 `toml:"node_spacing"`
	LayerSpacing float64 `toml:"layer_spacing"`
	EdgeRouting  string  `toml:"edge_routing"`
}

// Default returns the configuration a host gets with no file supplied:
// layout.DefaultOptions() plus a debounce matching orchestrator.DefaultDebounce
// and an empty style table (style is attached to entities directly, not
// resolved by name here).
func Default() Config {
	d := layout.DefaultOptions()
	return Config{
		Layout: LayoutConfig{
			Direction:    string(d.Direction),
			Algorithm:    string(d.Algorithm),
			NodeSpacing:  d.NodeSpacing,
			LayerSpacing: d.LayerSpacing,
			EdgeRouting:  string(d.EdgeRouting),
		},
		DebounceMS: 16,
	}
}

// Load parses a TOML document into Config, rejecting unknown keys — the
// closed option set spec.md §4.6 requires. Known style names (the same
// five spec.md §3 defines) are validated too.
func Load(data []byte) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, flowerrors.Wrap(flowerrors.InvalidInput, err, "parse configuration")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, flowerrors.New(flowerrors.InvalidInput, "unknown configuration key: %q", undecoded[0].String())
	}
	for name, style := range cfg.Styles {
		if err := model.ValidateStyle(model.Style(style)); err != nil {
			return Config{}, flowerrors.Wrap(flowerrors.InvalidInput, err, "style table entry %q", name)
		}
	}
	return cfg, nil
}

// LoadFile reads and parses a TOML configuration file.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, flowerrors.Wrap(flowerrors.InvalidInput, err, "read configuration %q", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, flowerrors.New(flowerrors.InvalidInput, "unknown configuration key: %q", undecoded[0].String())
	}
	for name, style := range cfg.Styles {
		if err := model.ValidateStyle(model.Style(style)); err != nil {
			return Config{}, flowerrors.Wrap(flowerrors.InvalidInput, err, "style table entry %q", name)
		}
	}
	return cfg, nil
}

// LayoutOptions converts the TOML layout table into layout.Options and
// validates it against the closed enum set.
func (c Config) LayoutOptions() (layout.Options, error) {
	opts := layout.Options{
		Direction:    layout.Direction(c.Layout.Direction),
		Algorithm:    layout.Algorithm(c.Layout.Algorithm),
		NodeSpacing:  c.Layout.NodeSpacing,
		LayerSpacing: c.Layout.LayerSpacing,
		EdgeRouting:  layout.EdgeRouting(c.Layout.EdgeRouting),
	}
	if err := opts.Validate(); err != nil {
		return layout.Options{}, err
	}
	return opts, nil
}

// Debounce returns the orchestrator debounce window.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}
