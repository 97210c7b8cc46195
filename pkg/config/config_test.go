package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load([]byte(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts, err := cfg.LayoutOptions()
	if err != nil {
		t.Fatalf("LayoutOptions: %v", err)
	}
	if opts.Algorithm != "layered" {
		t.Errorf("Algorithm = %q, want layered", opts.Algorithm)
	}
}

func TestLoad_RejectsUnknownKey(t *testing.T) {
	_, err := Load([]byte("unknown_option = true\n"))
	if err == nil {
		t.Fatal("Load: want error for unknown key, got nil")
	}
}

func TestLoad_RejectsUnknownStyle(t *testing.T) {
	_, err := Load([]byte("[styles]\nnode = \"sparkly\"\n"))
	if err == nil {
		t.Fatal("Load: want error for unknown style, got nil")
	}
}

func TestLoad_OverridesLayoutAndDebounce(t *testing.T) {
	cfg, err := Load([]byte(`
debounce_ms = 32

[layout]
direction = "UP"
algorithm = "force"
node_spacing = 10
layer_spacing = 20
edge_routing = "splines"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts, err := cfg.LayoutOptions()
	if err != nil {
		t.Fatalf("LayoutOptions: %v", err)
	}
	if opts.Direction != "UP" || opts.Algorithm != "force" || opts.EdgeRouting != "splines" {
		t.Errorf("opts = %+v, unexpected override", opts)
	}
	if cfg.Debounce().Milliseconds() != 32 {
		t.Errorf("Debounce() = %v, want 32ms", cfg.Debounce())
	}
}

func TestLoad_RejectsInvalidLayoutOption(t *testing.T) {
	cfg, err := Load([]byte("[layout]\ndirection = \"SIDEWAYS\"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := cfg.LayoutOptions(); err == nil {
		t.Fatal("LayoutOptions: want error for invalid direction, got nil")
	}
}
