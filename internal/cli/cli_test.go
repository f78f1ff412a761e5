package cli

import (
	"bytes"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/matzehuels/storeweaver/pkg/cache"
	"github.com/matzehuels/storeweaver/pkg/config"
	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	"github.com/matzehuels/storeweaver/pkg/core/catalog/catalogtest"
	"github.com/matzehuels/storeweaver/pkg/core/score"
	"github.com/matzehuels/storeweaver/pkg/core/zones"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
	"github.com/matzehuels/storeweaver/pkg/layout"
)

// workspace changes into a fresh directory holding the store catalog and
// returns the catalog path.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("STOREWEAVER_CACHE_DIR", filepath.Join(dir, "cache"))
	path := filepath.Join(dir, "modules_catalog.json")
	if err := catalog.WriteFile(catalogtest.Store(), path); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"generate", "bricks", "zones", "score", "stats", "preview", "serve", "cache", "config", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestNewCache(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		cfg     config.Cache
		noCache bool
		check   func(cache.Cache) bool
	}{
		{"no cache flag", config.Cache{Backend: config.BackendFile, Dir: dir}, true, func(c cache.Cache) bool { _, ok := c.(cache.NullCache); return ok }},
		{"none", config.Cache{Backend: config.BackendNone}, false, func(c cache.Cache) bool { _, ok := c.(cache.NullCache); return ok }},
		{"memory", config.Cache{Backend: config.BackendMemory, Entries: 8}, false, func(c cache.Cache) bool { _, ok := c.(*cache.MemoryCache); return ok }},
		{"file", config.Cache{Backend: config.BackendFile, Dir: dir}, false, func(c cache.Cache) bool { _, ok := c.(*cache.FileCache); return ok }},
		{"redis", config.Cache{Backend: config.BackendRedis, RedisURL: "redis://localhost:6379/0"}, false, func(c cache.Cache) bool { _, ok := c.(*cache.RedisCache); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newCache(tt.cfg, tt.noCache)
			if err != nil {
				t.Fatalf("newCache() error: %v", err)
			}
			defer c.Close()
			if !tt.check(c) {
				t.Errorf("newCache() = %T", c)
			}
		})
	}
}

func TestGenerateCommand(t *testing.T) {
	cat := workspace(t)
	out := filepath.Join(t.TempDir(), "layout.json")

	if _, err := execute(t, "generate", "--catalog", cat, "--seed", "42", "-o", out); err != nil {
		t.Fatalf("generate error: %v", err)
	}

	l, err := layout.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if l.Seed != 42 || l.Viewport != score.ViewportWide {
		t.Errorf("layout seed/viewport = %d/%s, want 42/wide", l.Seed, l.Viewport)
	}
	if l.ID == "" {
		t.Error("layout has no id")
	}
	if l.Bricks != nil {
		t.Error("wide layout without --group should have no bricks")
	}
}

func TestGenerateCommandIsDeterministic(t *testing.T) {
	cat := workspace(t)
	dir := t.TempDir()

	var outputs [][]byte
	for i, extra := range [][]string{{"--no-cache"}, {}, {}} {
		out := filepath.Join(dir, "layout"+string(rune('a'+i))+".json")
		args := append([]string{"generate", "--catalog", cat, "--seed", "7", "-w", "medium", "-o", out}, extra...)
		if _, err := execute(t, args...); err != nil {
			t.Fatalf("generate error: %v", err)
		}
		l, err := layout.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		data, err := layout.Marshal(l)
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, data)
	}
	for i := 1; i < len(outputs); i++ {
		if !bytes.Equal(outputs[0], outputs[i]) {
			t.Errorf("run %d differs from run 0", i)
		}
	}
}

func TestGenerateCommandInvalidViewport(t *testing.T) {
	cat := workspace(t)
	_, err := execute(t, "generate", "--catalog", cat, "-w", "tablet", "-o", filepath.Join(t.TempDir(), "x.json"))
	if !errs.Is(err, errs.ErrCodeInvalidViewport) {
		t.Errorf("error = %v, want INVALID_VIEWPORT", err)
	}
}

func TestBricksCommand(t *testing.T) {
	cat := workspace(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "layout.json")
	out := filepath.Join(dir, "layout.bricks.json")

	if _, err := execute(t, "generate", "--catalog", cat, "--seed", "3", "-o", in); err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if _, err := execute(t, "bricks", in, "--catalog", cat); err != nil {
		t.Fatalf("bricks error: %v", err)
	}

	l, err := layout.ReadFile(out)
	if err != nil {
		t.Fatalf("default output not written: %v", err)
	}
	if len(l.Bricks) == 0 {
		t.Fatal("bricks output has no groups")
	}
	n := 0
	for _, b := range l.Bricks {
		n += len(b.ModuleIDs)
	}
	if n != len(l.Entries) {
		t.Errorf("bricks cover %d entries, want %d", n, len(l.Entries))
	}
}

func TestCachePathCommand(t *testing.T) {
	workspace(t)
	dir := filepath.Join(t.TempDir(), "layouts")
	t.Setenv("STOREWEAVER_CACHE_DIR", dir)

	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), dir)
	}
}

func TestConfigCommand(t *testing.T) {
	workspace(t)
	t.Setenv("STOREWEAVER_ENGINE_VIEWPORT", "narrow")

	out, err := execute(t, "config")
	if err != nil {
		t.Fatalf("config error: %v", err)
	}
	for _, want := range []string{"[engine]", `viewport = "narrow"`, "[cache]", "[server]"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	workspace(t)
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion does not mention the command")
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}

func TestScoreOptionsSlot(t *testing.T) {
	tests := []struct {
		name string
		so   scoreOptions
		want errs.Code
	}{
		{"valid", scoreOptions{viewport: "wide", tier: "hero", placement: "content"}, ""},
		{"header", scoreOptions{viewport: "narrow", tier: "Prominent", placement: "HEADER"}, ""},
		{"bad viewport", scoreOptions{viewport: "tv", tier: "hero", placement: "content"}, errs.ErrCodeInvalidViewport},
		{"bad tier", scoreOptions{viewport: "wide", tier: "gold", placement: "content"}, errs.ErrCodeInvalidInput},
		{"bad placement", scoreOptions{viewport: "wide", tier: "hero", placement: "sidebar"}, errs.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.so.slot()
			if got := errs.GetCode(err); got != tt.want {
				t.Errorf("slot() code = %q, want %q (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestScoreOptionsModules(t *testing.T) {
	cat := catalogtest.Store()

	mods, err := scoreOptions{typ: "hero"}.modules(cat, nil)
	if err != nil || len(mods) != 5 {
		t.Errorf("modules(type hero) = %d, %v; want 5", len(mods), err)
	}
	mods, err = scoreOptions{}.modules(cat, []string{"video_02", "hero_01"})
	if err != nil || len(mods) != 2 || mods[0].ID != "video_02" {
		t.Errorf("modules(ids) = %v, %v", mods, err)
	}
	if _, err := (scoreOptions{}).modules(cat, []string{"nope"}); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("unknown id error = %v, want NOT_FOUND", err)
	}
	if _, err := (scoreOptions{typ: "popup"}).modules(cat, nil); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("unknown type error = %v, want INVALID_INPUT", err)
	}
}

func TestRankModules(t *testing.T) {
	mods := []*catalog.Module{}
	for _, m := range []catalog.Module{
		catalogtest.Module("tiny", catalog.TypeGallery, 150, 100),
		catalogtest.Module("banner", catalog.TypeGallery, 1920, 800),
		catalogtest.Module("square", catalog.TypeGallery, 900, 900),
	} {
		mods = append(mods, &m)
	}
	slot := score.SlotFor(score.ViewportWide, score.TierHero, score.PlacementContent)

	ranked := rankModules(mods, slot, false, 2)
	if len(ranked) != 2 {
		t.Fatalf("rankModules() = %d entries, want 2", len(ranked))
	}
	if ranked[0].Module.ID != "banner" {
		t.Errorf("best = %s, want banner", ranked[0].Module.ID)
	}
	if ranked[0].Total() < ranked[1].Total() {
		t.Error("rankModules() not sorted by total")
	}

	rows := scoreRows(ranked)
	if rows[0][2] != "1920x800" {
		t.Errorf("size column = %q", rows[0][2])
	}
}

func TestZoneRows(t *testing.T) {
	zs := zones.PlanCounts(12, 6)
	rows := zoneRows(zs)
	if len(rows) != len(zs) {
		t.Fatalf("zoneRows() = %d rows, want %d", len(rows), len(zs))
	}
	for i, z := range zs {
		if rows[i][1] != strconv.Itoa(z.Position) || rows[i][3] != strconv.Itoa(z.End()) {
			t.Errorf("row %d = %v, zone %+v", i, rows[i], z)
		}
	}
}

func TestStatsRows(t *testing.T) {
	rows := statsRows(catalog.Stats(catalogtest.Store()))
	if len(rows) == 0 {
		t.Fatal("statsRows() returned nothing")
	}
	if rows[0][0] != string(catalog.TypeMast) || rows[0][1] != "1" {
		t.Errorf("first row = %v, want mast with one module", rows[0])
	}
	if !strings.Contains(renderTable([]string{"Type", "Count"}, [][]string{{"hero", "5"}}, 1), "hero") {
		t.Error("renderTable() lost a cell")
	}
}
