package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tscodec.config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `{
		"transform": {
			"include": ["src/**/*.ts", "lib/**/*.ts"],
			"exclude": ["**/*.spec.ts"],
			"decodeDefaults": false
		},
		"tsconfig": "tsconfig.build.json",
		"markerModule": "@acme/tscodec"
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Transform.Include) != 2 {
		t.Errorf("include = %v", cfg.Transform.Include)
	}
	if len(cfg.Transform.Exclude) != 1 || cfg.Transform.Exclude[0] != "**/*.spec.ts" {
		t.Errorf("exclude = %v", cfg.Transform.Exclude)
	}
	if cfg.Tsconfig != "tsconfig.build.json" {
		t.Errorf("tsconfig = %q", cfg.Tsconfig)
	}
	if cfg.MarkerModule != "@acme/tscodec" {
		t.Errorf("markerModule = %q", cfg.MarkerModule)
	}
	if cfg.ApplyDefaults() {
		t.Error("decodeDefaults: false should disable defaults application")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"transform": {"include": ["app/**/*.ts"]}}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tsconfig != "tsconfig.json" {
		t.Errorf("tsconfig default = %q", cfg.Tsconfig)
	}
	if cfg.MarkerModule != "tscodec" {
		t.Errorf("markerModule default = %q", cfg.MarkerModule)
	}
	if !cfg.ApplyDefaults() {
		t.Error("decodeDefaults should default to true")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no include", Config{Tsconfig: "t.json", MarkerModule: "tscodec"}, "transform.include"},
		{
			"empty pattern",
			Config{Transform: TransformConfig{Include: []string{" "}}, Tsconfig: "t.json", MarkerModule: "tscodec"},
			"empty pattern",
		},
		{
			"empty tsconfig",
			Config{Transform: TransformConfig{Include: []string{"src/**/*.ts"}}, MarkerModule: "tscodec"},
			"tsconfig",
		},
		{
			"empty marker module",
			Config{Transform: TransformConfig{Include: []string{"src/**/*.ts"}}, Tsconfig: "t.json"},
			"markerModule",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}

	valid := DefaultConfig()
	if err := valid.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	// Empty path with no default file present returns defaults.
	dir := t.TempDir()
	orig, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(orig)

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.MarkerModule != "tscodec" || len(cfg.Transform.Include) != 1 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestMatchesGlob(t *testing.T) {
	tests := []struct {
		path    string
		include []string
		exclude []string
		want    bool
	}{
		{"/proj/src/user.ts", []string{"src/**/*.ts"}, nil, true},
		{"/proj/src/api/deep/user.ts", []string{"src/**/*.ts"}, nil, true},
		{"/proj/lib/user.ts", []string{"src/**/*.ts"}, nil, false},
		{"/proj/src/user.spec.ts", []string{"src/**/*.ts"}, []string{"**/*.spec.ts"}, false},
		{"/proj/src/user.ts", []string{"**/*.ts"}, nil, true},
		{"/proj/src/user.js", []string{"**/*.ts"}, nil, false},
		{"/proj/src/user.ts", nil, nil, false},
		{"src/user.ts", []string{"src/**/*.ts"}, nil, true},
	}
	for _, tt := range tests {
		got := MatchesGlob(tt.path, tt.include, tt.exclude)
		if got != tt.want {
			t.Errorf("MatchesGlob(%q, %v, %v) = %v, want %v", tt.path, tt.include, tt.exclude, got, tt.want)
		}
	}
}
