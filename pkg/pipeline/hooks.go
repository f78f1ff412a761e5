package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storeweaver/pkg/observability"
)

// LogHooks writes engine decisions at debug level and pipeline events at
// info level. It implements observability.EngineHooks and
// observability.PipelineHooks.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to logger, or log.Default() when nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{Logger: logger}
}

func (h *LogHooks) OnSelect(s observability.Selection) {
	if s.Chosen == "" {
		h.Logger.Debug("no candidate", "type", s.Type, "tier", s.Tier)
		return
	}
	h.Logger.Debug("selected",
		"type", s.Type,
		"tier", s.Tier,
		"candidates", s.Candidates,
		"survivors", s.Survivors,
		"pool", s.Pool,
		"fallback", s.Fallback,
		"module", s.Chosen)
}

func (h *LogHooks) OnStep(s observability.Step) {
	if s.Skipped {
		h.Logger.Debug("step skipped", "phase", s.Phase, "iteration", s.Iteration, "type", s.Type)
		return
	}
	h.Logger.Debug("step", "phase", s.Phase, "iteration", s.Iteration, "position", s.Position, "module", s.ModuleID)
}

func (h *LogHooks) OnZone(position, planned, emitted int) {
	h.Logger.Debug("zone filled", "position", position, "planned", planned, "emitted", emitted)
}

func (h *LogHooks) OnGroup(kind string, size int) {
	h.Logger.Debug("group", "kind", kind, "size", size)
}

func (h *LogHooks) OnLoadStart(_ context.Context, path string) {
	h.Logger.Debug("loading catalog", "path", path)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, path string, count int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Error("catalog load failed", "path", path, "err", err)
		return
	}
	h.Logger.Info("catalog loaded", "path", path, "modules", count, "duration", d)
}

func (h *LogHooks) OnGenerateStart(_ context.Context, viewport string, seed uint64) {
	h.Logger.Debug("generating", "viewport", viewport, "seed", seed)
}

func (h *LogHooks) OnGenerateComplete(_ context.Context, viewport string, length int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Error("generation failed", "viewport", viewport, "entries", length, "err", err)
		return
	}
	h.Logger.Debug("generated", "viewport", viewport, "entries", length, "duration", d)
}

func (h *LogHooks) OnGroupComplete(_ context.Context, groups int, d time.Duration) {
	h.Logger.Debug("grouped", "groups", groups, "duration", d)
}

var (
	_ observability.EngineHooks   = (*LogHooks)(nil)
	_ observability.PipelineHooks = (*LogHooks)(nil)
)
