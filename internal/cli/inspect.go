package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	"github.com/matzehuels/storeweaver/pkg/core/engagement"
	"github.com/matzehuels/storeweaver/pkg/core/score"
	"github.com/matzehuels/storeweaver/pkg/core/zones"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
)

// =============================================================================
// zones
// =============================================================================

// zonesCommand creates the zones command that prints the zone plan of a
// catalog.
func (c *CLI) zonesCommand() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "zones",
		Short: "Show the interactive zone plan for a catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.readCatalog(catalogPath)
			if err != nil {
				return err
			}

			tier1 := cat.Count(zones.DefaultTiers.Tier1...)
			tier2 := cat.Count(zones.DefaultTiers.Tier2...)
			zs := zones.Plan(cat, zones.DefaultTiers)

			printKeyValue("Tier 1", strconv.Itoa(tier1))
			printKeyValue("Tier 2", strconv.Itoa(tier2))
			if len(zs) == 0 {
				printInfo("No zones planned")
				return nil
			}
			fmt.Println(renderTable([]string{"Zone", "Position", "Sections", "End"}, zoneRows(zs), 0, 1, 2, 3))
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "module catalog (default from config)")
	return cmd
}

func zoneRows(zs []zones.Zone) [][]string {
	rows := make([][]string, len(zs))
	for i, z := range zs {
		rows[i] = []string{
			strconv.Itoa(i),
			strconv.Itoa(z.Position),
			strconv.Itoa(z.SectionCount),
			strconv.Itoa(z.End()),
		}
	}
	return rows
}

// =============================================================================
// score
// =============================================================================

// scoreOptions selects the slot and the modules to score.
type scoreOptions struct {
	viewport  string
	tier      string
	placement string
	typ       string
	top       int
	enhanced  bool
}

// scoreCommand creates the score command that ranks modules for a slot.
func (c *CLI) scoreCommand() *cobra.Command {
	var catalogPath string
	so := scoreOptions{
		viewport:  string(score.ViewportWide),
		tier:      string(score.TierProminent),
		placement: string(score.PlacementContent),
		top:       20,
	}

	cmd := &cobra.Command{
		Use:   "score [module-id...]",
		Short: "Score modules for quality and fit against a slot",
		Long: `Score modules for quality and fit against a slot.

Without module ids every module of the catalog (or of --type) is scored and
the best --top are listed by combined score. The slot is derived from the
viewport, tier and placement the same way the composer derives it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.readCatalog(catalogPath)
			if err != nil {
				return err
			}
			slot, err := so.slot()
			if err != nil {
				return err
			}
			mods, err := so.modules(cat, args)
			if err != nil {
				return err
			}

			printKeyValue("Slot", fmt.Sprintf("%dx%d %s/%s", slot.Width, slot.Height, slot.Tier, slot.Placement))
			printKeyValue("Min quality", strconv.FormatFloat(slot.Tier.MinQuality(), 'f', 1, 64))
			fmt.Println(renderTable(
				[]string{"Module", "Type", "Size", "Quality", "Fit", "Total"},
				scoreRows(rankModules(mods, slot, so.enhanced, so.top)),
				3, 4, 5,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "module catalog (default from config)")
	cmd.Flags().StringVarP(&so.viewport, "viewport", "w", so.viewport, "viewport: wide, medium, narrow")
	cmd.Flags().StringVar(&so.tier, "tier", so.tier, "tier: hero, prominent, secondary, filler")
	cmd.Flags().StringVar(&so.placement, "placement", so.placement, "placement: header, content, footer")
	cmd.Flags().StringVarP(&so.typ, "type", "t", "", "only score modules of this type")
	cmd.Flags().IntVarP(&so.top, "top", "n", so.top, "number of modules to list (0 for all)")
	cmd.Flags().BoolVar(&so.enhanced, "enhanced-fit", false, "penalize wide scaling and tiny sources")

	return cmd
}

func (so scoreOptions) slot() (score.Slot, error) {
	v, err := score.ParseViewport(so.viewport)
	if err != nil {
		return score.Slot{}, err
	}
	tier := score.Tier(strings.ToLower(so.tier))
	switch tier {
	case score.TierHero, score.TierProminent, score.TierSecondary, score.TierFiller:
	default:
		return score.Slot{}, errs.New(errs.ErrCodeInvalidInput, "unknown tier %q", so.tier)
	}
	placement := score.Placement(strings.ToLower(so.placement))
	switch placement {
	case score.PlacementHeader, score.PlacementContent, score.PlacementFooter:
	default:
		return score.Slot{}, errs.New(errs.ErrCodeInvalidInput, "unknown placement %q", so.placement)
	}
	return score.SlotFor(v, tier, placement), nil
}

func (so scoreOptions) modules(cat *catalog.Catalog, ids []string) ([]*catalog.Module, error) {
	if len(ids) > 0 {
		mods := make([]*catalog.Module, 0, len(ids))
		for _, id := range ids {
			m, ok := cat.Get(id)
			if !ok {
				return nil, errs.New(errs.ErrCodeNotFound, "module %q not in catalog", id)
			}
			mods = append(mods, m)
		}
		return mods, nil
	}
	if so.typ == "" {
		return cat.Modules(), nil
	}
	t, ok := catalog.ParseType(so.typ)
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown module type %q", so.typ)
	}
	return cat.ByType(t), nil
}

// rankModules scores mods for slot, best first. Equal totals keep catalog
// order.
func rankModules(mods []*catalog.Module, slot score.Slot, enhanced bool, top int) []score.Scored {
	scored := make([]score.Scored, len(mods))
	for i, m := range mods {
		scored[i] = score.Score(m, &slot, enhanced)
	}
	slices.SortStableFunc(scored, func(a, b score.Scored) int {
		return cmp.Compare(b.Total(), a.Total())
	})
	if top > 0 && len(scored) > top {
		scored = scored[:top]
	}
	return scored
}

func scoreRows(scored []score.Scored) [][]string {
	rows := make([][]string, len(scored))
	for i, s := range scored {
		rows[i] = []string{
			s.Module.ID,
			string(s.Module.Type),
			fmt.Sprintf("%dx%d", s.Module.Width(), s.Module.Height()),
			formatScore(s.Quality),
			formatScore(s.Fit),
			formatScore(s.Total()),
		}
	}
	return rows
}

func formatScore(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

// =============================================================================
// stats
// =============================================================================

// statsCommand creates the stats command that summarises a catalog.
func (c *CLI) statsCommand() *cobra.Command {
	var catalogPath, metrics string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise catalog inventory and estimated engagement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.readCatalog(catalogPath)
			if err != nil {
				return err
			}

			printKeyValue("Modules", strconv.Itoa(cat.Len()))
			printKeyValue("Types", strconv.Itoa(len(cat.Types())))
			fmt.Println(renderTable(
				[]string{"Type", "Count", "Avg area", "Min area", "Max area", "Aspects"},
				statsRows(catalog.Stats(cat)),
				1, 2, 3, 4,
			))

			if metrics == "" {
				return nil
			}
			m, err := engagement.ReadMetricsFile(metrics)
			if err != nil {
				return fmt.Errorf("load metrics %s: %w", metrics, err)
			}
			estimates := engagement.Analyze(cat, m)
			if len(estimates) == 0 {
				printWarning("No module matched a store in %s", metrics)
				return nil
			}
			printNewline()
			printInfo("Estimated engagement for %d modules", len(estimates))
			fmt.Println(renderTable(
				[]string{"Type", "Count", "Engagement", "View time", "Conversion", "Score"},
				engagementRows(engagement.Summarize(cat, estimates)),
				1, 2, 3, 4, 5,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "module catalog (default from config)")
	cmd.Flags().StringVar(&metrics, "metrics", "", "store metrics CSV")
	return cmd
}

func statsRows(stats []catalog.TypeStats) [][]string {
	rows := make([][]string, len(stats))
	for i, s := range stats {
		aspects := make([]string, len(s.CommonAspects))
		for j, a := range s.CommonAspects {
			aspects[j] = strconv.FormatFloat(a, 'f', -1, 64)
		}
		rows[i] = []string{
			string(s.Type),
			strconv.Itoa(s.Count),
			strconv.FormatFloat(s.AvgArea, 'f', 0, 64),
			strconv.Itoa(s.MinArea),
			strconv.Itoa(s.MaxArea),
			strings.Join(aspects, ", "),
		}
	}
	return rows
}

func engagementRows(summary []engagement.TypeSummary) [][]string {
	rows := make([][]string, len(summary))
	for i, s := range summary {
		rows[i] = []string{
			string(s.Type),
			strconv.Itoa(s.Count),
			formatScore(s.AvgEngagement),
			strconv.FormatFloat(s.AvgViewTime, 'f', 1, 64) + "s",
			strconv.FormatFloat(s.AvgConversion, 'f', 4, 64),
			formatScore(s.PerformanceScore),
		}
	}
	return rows
}

// readCatalog reads the catalog at path, or the configured one when path is
// empty.
func (c *CLI) readCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		cfg, err := c.loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Engine.Catalog
	}
	cat, err := catalog.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	c.Logger.Debug("loaded catalog", "path", path, "modules", cat.Len())
	return cat, nil
}
