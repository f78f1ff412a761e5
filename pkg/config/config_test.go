package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	"github.com/matzehuels/storeweaver/pkg/core/compose"
	"github.com/matzehuels/storeweaver/pkg/core/score"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "storeweaver.toml", `
[engine]
catalog = "stores/acme.json"
viewport = "Narrow"
strategy = "simple"
min_content = 12
max_content = 14

[[engine.categories]]
name = "only-products"
types = ["products", "bestsellers"]
weight = 1.0
tier = "prominent"

[cache]
backend = "memory"
entries = 64
ttl = "36h"

[server]
addr = "127.0.0.1:9000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Engine.Catalog != "stores/acme.json" || cfg.Engine.ViewportValue() != score.ViewportNarrow {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Cache.Backend != BackendMemory || cfg.Cache.Entries != 64 || cfg.Cache.TTL != 36*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}

	s := cfg.Engine.ComposeStrategy()
	if s.PlanZones || s.MinContent != 12 || s.MaxContent != 14 {
		t.Errorf("strategy = %+v", s)
	}
	if len(s.Categories) != 1 || s.Categories[0].Types[1] != catalog.TypeBestsellers || s.Categories[0].Tier != score.TierProminent {
		t.Errorf("categories = %+v", s.Categories)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "storeweaver.toml", "[engine]\nviewport = \"medium\"\n")
	t.Setenv("STOREWEAVER_ENGINE_VIEWPORT", "wide")
	t.Setenv("STOREWEAVER_CACHE_BACKEND", "redis")
	t.Setenv("STOREWEAVER_CACHE_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("STOREWEAVER_SERVER_WRITE_TIMEOUT", "1m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Engine.Viewport != "wide" {
		t.Errorf("viewport = %s, want wide", cfg.Engine.Viewport)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.WriteTimeout != time.Minute {
		t.Errorf("write timeout = %v", cfg.Server.WriteTimeout)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dotenv := writeFile(t, ".env", "STOREWEAVER_ENGINE_STRATEGY=simple\n")
	t.Setenv("STOREWEAVER_ENGINE_STRATEGY", "")
	os.Unsetenv("STOREWEAVER_ENGINE_STRATEGY")
	t.Chdir(t.TempDir())

	cfg, err := Load("", dotenv, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Engine.Strategy != StrategySimple {
		t.Errorf("strategy = %s, want simple", cfg.Engine.Strategy)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Engine.Strategy != StrategyZones {
		t.Errorf("strategy = %s", cfg.Engine.Strategy)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errs.Code
	}{
		{"malformed", "[engine\n", errs.ErrCodeInvalidConfig},
		{"viewport", "[engine]\nviewport = \"tablet\"\n", errs.ErrCodeInvalidViewport},
		{"strategy", "[engine]\nstrategy = \"grid\"\n", errs.ErrCodeInvalidConfig},
		{"bounds", "[engine]\nmin_content = 20\nmax_content = 10\n", errs.ErrCodeInvalidConfig},
		{"backend", "[cache]\nbackend = \"memcached\"\n", errs.ErrCodeInvalidConfig},
		{"redis url", "[cache]\nbackend = \"redis\"\n", errs.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.toml", tt.content))
			if !errs.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Load(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestComposeStrategyDefaults(t *testing.T) {
	s := Default().Engine.ComposeStrategy()
	want := compose.DefaultStrategy()
	if s.PlanZones != want.PlanZones || s.MinContent != want.MinContent || s.MaxIterations != want.MaxIterations {
		t.Errorf("ComposeStrategy() = %+v, want %+v", s, want)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	cfg, err := Load(writeFile(t, "c.toml", buf.String()))
	if err != nil {
		t.Fatalf("Load(encoded) error: %v", err)
	}
	if cfg.Server.Addr != Default().Server.Addr || cfg.Cache.TTL != Default().Cache.TTL {
		t.Errorf("round trip lost settings: %+v", cfg)
	}
}

func TestLoadExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", DefaultFile))
	if err != nil {
		t.Fatalf("Load(example) error: %v", err)
	}
	if cfg.Cache.TTL != 168*time.Hour || cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("durations = %v/%v", cfg.Cache.TTL, cfg.Server.ReadTimeout)
	}
	if len(cfg.Engine.Categories) != 2 || cfg.Engine.Categories[0].Tier != score.TierProminent {
		t.Errorf("categories = %+v", cfg.Engine.Categories)
	}
	if got := cfg.Engine.ComposeStrategy().Categories[1].Types[0]; got != catalog.TypeGallery {
		t.Errorf("second category first type = %s, want gallery", got)
	}
}
