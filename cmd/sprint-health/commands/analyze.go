package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"sprint-health/internal/stats"

	"github.com/spf13/cobra"
)

var (
	analyzeSprints    []string
	analyzeGroups     []string
	analyzeGroupField string
	analyzeTimeFrame  int
	analyzeModel      string
	analyzeScoped     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute sprint metrics and print them as JSON",
	Long: `Computes the metrics payload for one sprint selection. With several --sprint flags
every sprint is scored separately and the mean health score is reported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := loadDataset()
		if err != nil {
			return err
		}
		snap, err := data.Snapshot()
		if err != nil {
			return err
		}

		policy, err := stats.LoadHealthPolicy(cfg.HealthPolicyPath)
		if err != nil {
			return err
		}
		model := analyzeModel
		if model == "" {
			model = cfg.HealthModel
		}
		scorer, err := stats.NewScorer(model, policy)
		if err != nil {
			return err
		}

		field := analyzeGroupField
		if field == "" {
			field = cfg.GroupField
		}
		query := stats.Query{
			SprintNames:  analyzeSprints,
			GroupValues:  analyzeGroups,
			GroupField:   field,
			TimeFramePct: analyzeTimeFrame,
		}
		opts := stats.Options{Scorer: scorer, ScopeTransitions: analyzeScoped}

		var out any
		if len(analyzeSprints) > 1 {
			out, err = stats.CompareSprints(snap, query, opts)
		} else {
			out, err = stats.ComputeMetrics(snap, query, opts)
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

var sprintsCmd = &cobra.Command{
	Use:   "sprints",
	Short: "List the sprints in the loaded exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := loadDataset()
		if err != nil {
			return err
		}
		snap, err := data.Snapshot()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SPRINT\tSTATUS\tSTART\tEND\tTASKS")
		for _, sp := range snap.Sprints {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", sp.Name, sp.Status, stats.DayLabel(sp.Start), stats.DayLabel(sp.End), len(sp.EntityIDs))
		}
		return w.Flush()
	},
}

func init() {
	analyzeCmd.Flags().StringSliceVarP(&analyzeSprints, "sprint", "s", nil, "sprint name (repeat to compare sprints)")
	analyzeCmd.Flags().StringSliceVarP(&analyzeGroups, "group", "g", nil, "area or workgroup value to include (repeatable)")
	analyzeCmd.Flags().StringVar(&analyzeGroupField, "group-field", "", "grouping field: area or workgroup (default from GROUP_FIELD)")
	analyzeCmd.Flags().IntVarP(&analyzeTimeFrame, "time-frame", "t", 100, "percentage of the sprint elapsed, 0-100")
	analyzeCmd.Flags().StringVarP(&analyzeModel, "model", "m", "", "health model: penalty or weighted (default from HEALTH_MODEL)")
	analyzeCmd.Flags().BoolVar(&analyzeScoped, "scoped-transitions", false, "limit the transition analysis to the selected tasks")
}
