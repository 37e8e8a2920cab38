package cli

import (
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/experimenter/internal/presets"
)

var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Manage bucket allocations",
}

var bucketRequestCmd = &cobra.Command{
	Use:   "request <experiment>",
	Short: "Allocate buckets for an experiment",
	Long: `Allocate a contiguous bucket range for an experiment in the namespace
named after its recipe slug. An experiment that already owns a range keeps it.

Without --count, the count of the --design preset is used.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runBucketRequest),
}

var bucketListCmd = &cobra.Command{
	Use:   "list <namespace>",
	Short: "List the allocations in a namespace",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runBucketList),
}

var (
	bucketCount  int
	bucketDesign string
)

func init() {
	bucketCmd.AddCommand(bucketRequestCmd)
	bucketCmd.AddCommand(bucketListCmd)

	bucketRequestCmd.Flags().IntVarP(&bucketCount, "count", "c", 0, "Number of buckets")
	bucketRequestCmd.Flags().StringVar(&bucketDesign, "design", presets.DefaultDesign, "Design preset supplying the count")
}

func runBucketRequest(cmd *cobra.Command, app *AppContext, args []string) error {
	r, err := app.Experiments.RequestBuckets(cmd.Context(), args[0], bucketCount, bucketDesign)
	if err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "Buckets %d-%d of %d in %s #%d\n",
		r.Start, r.End(), r.Namespace.Total, r.Namespace.Name, r.Namespace.Instance)
	return nil
}

func runBucketList(cmd *cobra.Command, app *AppContext, args []string) error {
	ranges, err := app.Repos.Buckets.ListByNamespace(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(ranges) == 0 {
		printf(out, "No allocations in %s\n", args[0])
		return nil
	}

	w := newTable(out)
	printf(w, "INSTANCE\tSTART\tEND\tEXPERIMENT\n")
	for _, r := range ranges {
		printf(w, "%d\t%d\t%d\t%s\n", r.Namespace.Instance, r.Start, r.End(), r.ExperimentID)
	}
	return w.Flush()
}
