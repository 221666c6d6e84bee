package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tscodec/tscodec/internal/codegen"
)

func TestInferRootDir(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{
			"shared prefix",
			[]string{"/project/src/a.ts", "/project/src/sub/b.ts"},
			"/project/src",
		},
		{
			"single file",
			[]string{"/project/src/a.ts"},
			"/project/src",
		},
		{
			"diverging",
			[]string{"/project/src/a.ts", "/project/lib/b.ts"},
			"/project",
		},
		{
			"no files",
			nil,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferRootDir(tt.files); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGlobRoot(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"src/**/*.ts", "src"},
		{"src/api/**/*.ts", "src/api"},
		{"**/*.ts", "."},
		{"src/main.ts", "src"},
		{"main.ts", "."},
	}
	for _, tt := range tests {
		if got := globRoot(tt.pattern); got != tt.want {
			t.Errorf("globRoot(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestWatchRoots(t *testing.T) {
	dirs := watchRoots("/project", []string{"src/**/*.ts", "src/**/*.tsx", "tools/*.ts"})
	want := []string{"/project/src", "/project/tools"}
	if len(dirs) != len(want) {
		t.Fatalf("got %v", dirs)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("dirs[%d] = %q, want %q", i, dirs[i], want[i])
		}
	}
}

func TestWatchRootsDefaultsToCwd(t *testing.T) {
	dirs := watchRoots("/project", nil)
	if len(dirs) != 1 || dirs[0] != "/project" {
		t.Errorf("got %v", dirs)
	}
}

func TestRegistrationDigests(t *testing.T) {
	regs := map[string]codegen.BrandValidator{
		"email":  {Param: "v", Body: "check(v);"},
		"handle": {Param: "v", Body: "probe(v);", Async: true},
	}
	d := registrationDigests(regs)

	if d["email"] != "v=>check(v);" {
		t.Errorf("email digest: got %q", d["email"])
	}
	if d["handle"] != "async v=>probe(v);" {
		t.Errorf("handle digest: got %q", d["handle"])
	}
	if registrationDigests(nil) != nil {
		t.Error("empty registrations should digest to nil")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cwd := t.TempDir()
	cfg, raw, err := loadConfig(cwd, "")
	if err != nil {
		t.Fatal(err)
	}
	if raw != nil {
		t.Error("defaults should carry no raw bytes")
	}
	if len(cfg.Transform.Include) == 0 {
		t.Error("default config missing include patterns")
	}
}

func TestLoadConfigExplicitPath(t *testing.T) {
	cwd := t.TempDir()
	path := filepath.Join(cwd, "custom.json")
	body := `{"tsconfig": "tsconfig.build.json", "transform": {"include": ["src/**/*.ts"]}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, raw, err := loadConfig(cwd, "custom.json")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tsconfig != "tsconfig.build.json" {
		t.Errorf("tsconfig: got %q", cfg.Tsconfig)
	}
	if string(raw) != body {
		t.Errorf("raw bytes: got %q", raw)
	}
}

func TestLoadConfigMissingExplicitPath(t *testing.T) {
	if _, _, err := loadConfig(t.TempDir(), "absent.json"); err == nil {
		t.Error("expected error for missing explicit config")
	}
}
