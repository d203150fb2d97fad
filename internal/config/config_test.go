package config

import (
	"os"
	"path/filepath"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "shaderc.json")

	content := `{
		"optimize": false,
		"verbose": true,
		"stats": true
	}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Optimize == nil || *cfg.Optimize != false {
		t.Errorf("Optimize: got %v, want false", cfg.Optimize)
	}
	if cfg.Verbose == nil || *cfg.Verbose != true {
		t.Errorf("Verbose: got %v, want true", cfg.Verbose)
	}
	if cfg.Stats == nil || *cfg.Stats != true {
		t.Errorf("Stats: got %v, want true", cfg.Stats)
	}
	if cfg.EmitGLSL != nil {
		t.Errorf("EmitGLSL: expected unset, got %v", *cfg.EmitGLSL)
	}
}

func TestLoadFileRejectsMalformedJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "shaderc.json")
	if err := os.WriteFile(configPath, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	if _, err := LoadFile(configPath); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
}

func TestLoadWalksUpToParentDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "shaderc.json"), []byte(`{"verbose": true}`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	cfg, path, err := Load(nested)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg == nil {
		t.Fatalf("expected config to be found by walking up")
	}
	if cfg.Verbose == nil || !*cfg.Verbose {
		t.Errorf("expected verbose=true, got %v", cfg.Verbose)
	}
	wantPath := filepath.Join(root, "shaderc.json")
	if path != wantPath {
		t.Errorf("expected path %q, got %q", wantPath, path)
	}
}

func TestLoadReturnsNilWhenNoConfigFound(t *testing.T) {
	dir := t.TempDir()
	cfg, path, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil || path != "" {
		t.Errorf("expected no config found, got cfg=%v path=%q", cfg, path)
	}
}

func TestToOptionsAppliesDefaultsForUnsetFields(t *testing.T) {
	cfg := &Config{Verbose: boolPtr(true)}
	opts := cfg.ToOptions()
	if !opts.Verbose {
		t.Errorf("expected verbose to be true")
	}
	if !opts.Optimize {
		t.Errorf("expected optimize to default true")
	}
}

func TestNilConfigToOptionsReturnsDefaults(t *testing.T) {
	var cfg *Config
	opts := cfg.ToOptions()
	if !opts.Optimize {
		t.Errorf("expected default optimize=true for nil config")
	}
}

func TestMergePrefersCLIOverConfigFile(t *testing.T) {
	cfg := &Config{Optimize: boolPtr(true), Stats: boolPtr(false)}
	merged := cfg.Merge(MergeOptions{
		Optimize: boolPtr(false),
	})
	if merged.Optimize {
		t.Errorf("expected CLI override to disable optimize")
	}
	if merged.Stats {
		t.Errorf("expected config file value for stats to survive when CLI doesn't override it")
	}
}
