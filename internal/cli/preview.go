package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storeweaver/pkg/core/brick"
	"github.com/matzehuels/storeweaver/pkg/core/compose"
	"github.com/matzehuels/storeweaver/pkg/core/score"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
	"github.com/matzehuels/storeweaver/pkg/pipeline"
)

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var flags engineFlags

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Browse generated layouts interactively",
		Long: `Browse generated layouts interactively.

Keys: r next seed, R random seed, v cycle viewport, b toggle bricks,
↑/↓ scroll, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, metrics := flags.options(cmd, cfg.Engine)

			runner, err := c.newRunner(cfg.Cache, flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			ctx := cmd.Context()
			if err := loadCatalog(ctx, runner, &opts, metrics); err != nil {
				return err
			}

			viewport := pipeline.DefaultViewport
			if opts.Viewport != "" {
				if viewport, err = score.ParseViewport(opts.Viewport); err != nil {
					return err
				}
			}
			seed := rand.Uint64()
			if opts.Seed != nil {
				seed = *opts.Seed
			}

			m := NewPreviewModel(runnerGenerator(ctx, runner, opts), viewport, seed)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

// GenerateFunc produces the layout shown by the preview.
type GenerateFunc func(viewport score.Viewport, seed uint64) (*pipeline.Result, error)

// runnerGenerator generates through runner with base as the template for
// every request.
func runnerGenerator(ctx context.Context, runner *pipeline.Runner, base pipeline.Options) GenerateFunc {
	return func(viewport score.Viewport, seed uint64) (*pipeline.Result, error) {
		opts := base
		opts.Viewport = string(viewport)
		opts.Seed = &seed
		opts.Group = true
		return runner.Execute(ctx, opts)
	}
}

// Preview styles
var (
	previewRoleStyles = map[compose.Role]lipgloss.Style{
		compose.RoleHeader:  lipgloss.NewStyle().Foreground(colorBlue),
		compose.RoleHero:    lipgloss.NewStyle().Foreground(colorCyan).Bold(true),
		compose.RoleHeading: lipgloss.NewStyle().Foreground(colorGray),
		compose.RoleZone:    lipgloss.NewStyle().Foreground(colorGreen),
		compose.RoleContent: lipgloss.NewStyle().Foreground(colorWhite),
	}
	previewDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	previewErrStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// PreviewModel - Interactive layout browser
// =============================================================================

// PreviewModel is the bubbletea model of the preview command.
type PreviewModel struct {
	Viewport score.Viewport
	Seed     uint64
	Result   *pipeline.Result
	Err      error

	ShowBricks bool
	Height     int
	Offset     int

	generate GenerateFunc
	reseed   func() uint64
}

// NewPreviewModel creates a preview and generates its first layout.
func NewPreviewModel(generate GenerateFunc, viewport score.Viewport, seed uint64) PreviewModel {
	m := PreviewModel{
		Viewport: viewport,
		Seed:     seed,
		Height:   20,
		generate: generate,
		reseed:   rand.Uint64,
	}
	m.regenerate()
	return m
}

func (m *PreviewModel) regenerate() {
	m.Offset = 0
	m.Result, m.Err = m.generate(m.Viewport, m.Seed)
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r", " ":
			m.Seed++
			m.regenerate()
		case "R":
			m.Seed = m.reseed()
			m.regenerate()
		case "v":
			i := slices.Index(score.Viewports, m.Viewport)
			m.Viewport = score.Viewports[(i+1)%len(score.Viewports)]
			m.regenerate()
		case "b":
			m.ShowBricks = !m.ShowBricks
			m.Offset = 0
		case "up", "k":
			if m.Offset > 0 {
				m.Offset--
			}
		case "down", "j":
			if m.Offset+m.Height < m.rowCount() {
				m.Offset++
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Layout preview"))
	b.WriteString("\n")
	b.WriteString(previewDimStyle.Render("r next seed  R random  v viewport  b bricks  ↑/↓ scroll  q quit"))
	b.WriteString("\n\n")

	if m.Result == nil || m.Result.Sequence == nil {
		msg := "no layout"
		if m.Err != nil {
			msg = errs.UserMessage(m.Err)
		}
		b.WriteString(previewErrStyle.Render(iconError + " " + msg))
		b.WriteString("\n")
		return b.String()
	}

	seq := m.Result.Sequence
	status := fmt.Sprintf("seed %d · %s · %d entries · %d/%d content · %d zones",
		seq.Seed, seq.Viewport, seq.Len(), seq.ContentCount(), seq.ContentTarget, len(seq.Zones))
	b.WriteString(StyleHighlight.Render(status))
	b.WriteString("\n")
	if m.Err != nil {
		b.WriteString(StyleWarning.Render(iconWarning + " " + errs.UserMessage(m.Err)))
		b.WriteString("\n")
	} else if seq.Incomplete {
		b.WriteString(StyleWarning.Render(iconWarning + " incomplete after " + strconv.Itoa(seq.Iterations) + " iterations"))
		b.WriteString("\n")
	}

	if m.ShowBricks {
		b.WriteString(renderTable([]string{"#", "Kind", "Shape", "Modules"}, m.visible(groupRows(m.Result.Groups)), 0))
	} else {
		b.WriteString(m.entryTable())
	}
	b.WriteString("\n")
	b.WriteString(previewDimStyle.Render(fmt.Sprintf("  [%d-%d/%d]", m.Offset+1, min(m.Offset+m.Height, m.rowCount()), m.rowCount())))
	return b.String()
}

func (m PreviewModel) rowCount() int {
	if m.Result == nil || m.Result.Sequence == nil {
		return 0
	}
	if m.ShowBricks {
		return len(m.Result.Groups)
	}
	return m.Result.Sequence.Len()
}

func (m PreviewModel) visible(rows [][]string) [][]string {
	end := min(m.Offset+m.Height, len(rows))
	if m.Offset >= end {
		return nil
	}
	return rows[m.Offset:end]
}

func (m PreviewModel) entryTable() string {
	rows := m.visible(entryRows(m.Result.Sequence))
	entries := m.Result.Sequence.Entries
	return renderTableFunc([]string{"#", "Role", "Type", "Module", "Tier", "Size"}, rows, func(row, col int) lipgloss.Style {
		if idx := m.Offset + row; col == 1 && idx < len(entries) {
			return previewRoleStyles[entries[idx].Role].Padding(0, 1)
		}
		return lipgloss.NewStyle().Padding(0, 1)
	})
}

func entryRows(seq *compose.Sequence) [][]string {
	rows := make([][]string, len(seq.Entries))
	for i, e := range seq.Entries {
		role := string(e.Role)
		if e.Zone >= 0 {
			role += " " + strconv.Itoa(e.Zone)
		}
		rows[i] = []string{
			strconv.Itoa(i),
			role,
			string(e.Module.Type),
			e.Module.ID,
			string(e.Tier),
			fmt.Sprintf("%dx%d", e.Module.Width(), e.Module.Height()),
		}
	}
	return rows
}

func groupRows(groups []brick.Group) [][]string {
	rows := make([][]string, len(groups))
	for i, g := range groups {
		ids := make([]string, len(g.Members))
		for j, mod := range g.Members {
			ids[j] = mod.ID
		}
		rows[i] = []string{strconv.Itoa(i), string(g.Kind), string(g.Shape), strings.Join(ids, ", ")}
	}
	return rows
}
