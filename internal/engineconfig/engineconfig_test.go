package engineconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile_MissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Cube.Size != 4 || c.Persistence.Debounce != 500*time.Millisecond || !c.Display.GridVisible {
		t.Fatalf("defaults=%+v", c)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("load created the file")
	}
}

func TestLoadFile_OverridesAndRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "engine.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	yml := "physics:\n  gravity: 3.5\npersistence:\n  store: sqlite\n  path: saves/history.db\n  debounce: 2s\ndisplay:\n  show_fps: true\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Physics.Gravity != 3.5 || c.Persistence.Store != "sqlite" || c.Persistence.Debounce != 2*time.Second || !c.Display.ShowFPS {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.Physics.Iterations != 30 || !c.Display.GridVisible {
		t.Fatalf("unset keys lost their defaults: %+v", c)
	}

	c.Display.GridVisible = false
	if err := SaveFile(path, c); err != nil {
		t.Fatalf("save: %v", err)
	}
	again, err := LoadFile(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again != c {
		t.Fatalf("round trip changed config:\n%+v\n%+v", again, c)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad yaml":   "grid: [",
		"zero cell":  "grid:\n  cell_size: 0\n",
		"big inset":  "cube:\n  body_inset: 2\n",
		"bad store":  "persistence:\n  store: redis\n",
		"hinge cap":  "interaction:\n  max_hinge_cubes: 1\n",
		"neg delay":  "persistence:\n  debounce: -1s\n",
	}
	for name, yml := range cases {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		c, err := LoadFile(path)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if name != "bad yaml" && !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: err=%v want ErrInvalid", name, err)
		}
		if c != Default() {
			t.Fatalf("%s: returned config is not the default", name)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	vars := map[string]string{
		EnvStore:        "sqlite",
		EnvStorePath:    "saves/history.db",
		EnvDebounce:     "1s",
		EnvObserverAddr: "127.0.0.1:8089",
	}
	lookup := func(k string) (string, bool) { v, ok := vars[k]; return v, ok }
	c := Default()
	if err := ApplyEnv(&c, lookup); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if c.Persistence.Store != "sqlite" || c.Persistence.Path != "saves/history.db" || c.Persistence.Debounce != time.Second || c.Observer.Addr != "127.0.0.1:8089" {
		t.Fatalf("overrides not applied: %+v", c)
	}

	vars = map[string]string{EnvDebounce: "soon"}
	c = Default()
	if err := ApplyEnv(&c, lookup); !errors.Is(err, ErrInvalid) {
		t.Fatalf("bad duration err=%v", err)
	}
	vars = map[string]string{EnvStore: "redis"}
	c = Default()
	if err := ApplyEnv(&c, lookup); !errors.Is(err, ErrInvalid) {
		t.Fatalf("bad store err=%v", err)
	}
	vars = map[string]string{}
	c = Default()
	if err := ApplyEnv(&c, lookup); err != nil || c != Default() {
		t.Fatalf("empty env changed config: %v", err)
	}
}
