package cli

import (
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/experiments"
)

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Manage experiments",
	Long:  `Create, list, inspect, retype and delete experiments.`,
}

var experimentCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new experiment",
	Long: `Create a new draft experiment. The slug defaults to the slugified name.

Examples:
  experimenter experiment create "Pinned Tabs" --type rapid --rapid-type cfr \
    --audience us_only --feature pinned_tabs --min-version 80.0`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runExperimentCreate),
}

var experimentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all experiments",
	Args:  cobra.NoArgs,
	RunE:  withApp(runExperimentList),
}

var experimentShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show an experiment with its branches, buckets and lifecycle",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runExperimentShow),
}

var experimentUpdateCmd = &cobra.Command{
	Use:   "update <slug>",
	Short: "Edit the audience and details of an editable experiment",
	Long: `Edit an experiment that has not launched. Only the flags given are changed.
An empty --audience clears the targeting and an empty --start clears the date.

Examples:
  experimenter experiment update pinned-tabs --audience us_only --min-version 90.0 --enrollment 14`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runExperimentUpdate),
}

var experimentSetTypeCmd = &cobra.Command{
	Use:   "set-type <slug> <type>",
	Short: "Change the type of an editable experiment",
	Long: `Change the type of an editable experiment.

Valid types: pref, addon, generic, rollout, rapid.`,
	Args: cobra.ExactArgs(2),
	RunE: withApp(runExperimentSetType),
}

var experimentDeleteCmd = &cobra.Command{
	Use:   "delete <slug>",
	Short: "Delete an editable experiment",
	Long:  `Delete an experiment that has not launched. Its branches, buckets, history and published recipe go with it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runExperimentDelete),
}

// Flags
var (
	expSlug         string
	expName         string
	expNormandySlug string
	expDescription  string
	expType         string
	expRapidType    string
	expMinVersion   string
	expAudience     string
	expFeatures     []string
	expEnrollment   int
	expStartDate    string
	expOwner        string

	expSort string
	expDesc bool
)

func init() {
	experimentCmd.AddCommand(experimentCreateCmd)
	experimentCmd.AddCommand(experimentListCmd)
	experimentCmd.AddCommand(experimentShowCmd)
	experimentCmd.AddCommand(experimentUpdateCmd)
	experimentCmd.AddCommand(experimentSetTypeCmd)
	experimentCmd.AddCommand(experimentDeleteCmd)

	f := experimentCreateCmd.Flags()
	f.StringVar(&expSlug, "slug", "", "Experiment slug (default: slugified name)")
	f.StringVar(&expNormandySlug, "normandy-slug", "", "Recipe slug used by the delivery service")
	f.StringVarP(&expDescription, "description", "d", "", "Public description")
	f.StringVarP(&expType, "type", "t", string(domain.DefaultExperimentType), "Experiment type")
	f.StringVar(&expRapidType, "rapid-type", "", "Rapid experiment type (requires --type rapid)")
	f.StringVar(&expMinVersion, "min-version", "", "Minimum browser version")
	f.StringVarP(&expAudience, "audience", "a", "", "Audience preset")
	f.StringSliceVarP(&expFeatures, "feature", "f", nil, "Feature preset (repeatable)")
	f.IntVar(&expEnrollment, "enrollment", domain.DefaultProposedEnrollment, "Proposed enrollment in days")
	f.StringVar(&expStartDate, "start", "", "Proposed start date (YYYY-MM-DD)")
	f.StringVarP(&expOwner, "owner", "o", "", "Owner email")

	u := experimentUpdateCmd.Flags()
	u.StringVar(&expName, "name", "", "Display name")
	u.StringVarP(&expDescription, "description", "d", "", "Public description")
	u.StringVar(&expMinVersion, "min-version", "", "Minimum browser version")
	u.StringVarP(&expAudience, "audience", "a", "", "Audience preset")
	u.StringSliceVarP(&expFeatures, "feature", "f", nil, "Feature preset (repeatable, replaces the current set)")
	u.IntVar(&expEnrollment, "enrollment", domain.DefaultProposedEnrollment, "Proposed enrollment in days")
	u.StringVar(&expStartDate, "start", "", "Proposed start date (YYYY-MM-DD)")
	u.StringVarP(&expOwner, "owner", "o", "", "Owner email")

	experimentListCmd.Flags().StringVarP(&expSort, "sort", "s", "", "Sort field (name, slug, type, status, owner, min_version, start_date, enrollment, created)")
	experimentListCmd.Flags().BoolVar(&expDesc, "desc", false, "Sort descending")
}

func runExperimentCreate(cmd *cobra.Command, app *AppContext, args []string) error {
	in := experiments.CreateInput{
		Slug:              expSlug,
		Name:              args[0],
		NormandySlug:      expNormandySlug,
		PublicDescription: expDescription,
		Type:              expType,
		RapidType:         expRapidType,
		FirefoxMinVersion: expMinVersion,
		Audience:          expAudience,
		Features:          expFeatures,
		ProposedStartDate: expStartDate,
		Owner:             expOwner,
	}
	if cmd.Flags().Changed("enrollment") {
		in.ProposedEnrollment = &expEnrollment
	}

	exp, err := app.Experiments.Create(cmd.Context(), in)
	if err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "Created experiment: %s (%s)\n", exp.Slug, exp.Type.Label())
	return nil
}

func runExperimentList(cmd *cobra.Command, app *AppContext, _ []string) error {
	exps, err := app.Experiments.List(cmd.Context(), expSort, expDesc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(exps) == 0 {
		printf(out, "No experiments found\n")
		return nil
	}

	w := newTable(out)
	printf(w, "SLUG\tNAME\tTYPE\tSTATUS\tPUBLISH\tOWNER\tSTART\n")
	for _, e := range exps {
		printf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Slug, e.Name, e.Type, e.Status, e.PublishStatus, orDash(e.Owner), formatDate(e.ProposedStartDate))
	}
	return w.Flush()
}

func runExperimentShow(cmd *cobra.Command, app *AppContext, args []string) error {
	ctx := cmd.Context()
	exp, err := app.Experiments.Get(ctx, args[0])
	if err != nil {
		return err
	}
	variants, err := app.Repos.Variants.ListByExperiment(ctx, exp.ID)
	if err != nil {
		return err
	}
	bucket, err := app.Repos.Buckets.GetByExperiment(ctx, exp.ID)
	if err != nil {
		return err
	}
	summary, err := app.Lifecycle.Describe(ctx, exp, true)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printf(out, "Experiment: %s\n", exp.Name)
	printf(out, "  Slug:         %s\n", exp.Slug)
	printf(out, "  Recipe slug:  %s\n", exp.RecipeSlug())
	printf(out, "  Type:         %s\n", exp.Type.Label())
	if exp.RapidType != nil {
		printf(out, "  Rapid type:   %s\n", exp.RapidType.Label())
	}
	printf(out, "  Audience:     %s\n", orDash(exp.Audience))
	printf(out, "  Min version:  %s\n", orDash(exp.FirefoxMinVersion))
	printf(out, "  Features:     %d\n", len(exp.Features))
	printf(out, "  Start:        %s\n", formatDate(exp.ProposedStartDate))
	printf(out, "  Enrollment:   %d days\n", exp.ProposedEnrollment)
	printf(out, "  Owner:        %s\n", orDash(exp.Owner))
	printf(out, "  Status:       %s/%s\n", exp.Status, exp.PublishStatus)
	printf(out, "  Summary:      %s\n", summary.Action)
	printf(out, "  Editable:     %t\n", summary.Editable)
	if summary.Rejection != nil {
		printf(out, "  Rejected:     %s by %s: %s\n",
			summary.Rejection.Description, summary.Rejection.ChangedBy, orDash(summary.Rejection.Message))
	}

	if bucket != nil && bucket.Namespace != nil {
		printf(out, "\nBuckets: %s #%d, %d-%d of %d\n",
			bucket.Namespace.Name, bucket.Namespace.Instance, bucket.Start, bucket.End(), bucket.Namespace.Total)
	}

	if len(variants) > 0 {
		printf(out, "\nBranches:\n")
		w := newTable(out)
		printf(w, "  SLUG\tRATIO\tCONTROL\n")
		for _, v := range variants {
			printf(w, "  %s\t%d\t%t\n", v.Slug, v.Ratio, v.IsControl)
		}
		return w.Flush()
	}
	return nil
}

func runExperimentUpdate(cmd *cobra.Command, app *AppContext, args []string) error {
	f := cmd.Flags()
	var in experiments.UpdateInput
	if f.Changed("name") {
		in.Name = &expName
	}
	if f.Changed("description") {
		in.PublicDescription = &expDescription
	}
	if f.Changed("min-version") {
		in.FirefoxMinVersion = &expMinVersion
	}
	if f.Changed("audience") {
		in.Audience = &expAudience
	}
	if f.Changed("feature") {
		in.Features = &expFeatures
	}
	if f.Changed("enrollment") {
		in.ProposedEnrollment = &expEnrollment
	}
	if f.Changed("start") {
		in.ProposedStartDate = &expStartDate
	}
	if f.Changed("owner") {
		in.Owner = &expOwner
	}

	exp, err := app.Experiments.Update(cmd.Context(), args[0], in)
	if err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "Updated experiment: %s (audience %s, min version %s, %d days)\n",
		exp.Slug, orDash(exp.Audience), orDash(exp.FirefoxMinVersion), exp.ProposedEnrollment)
	return nil
}

func runExperimentSetType(cmd *cobra.Command, app *AppContext, args []string) error {
	exp, err := app.Experiments.SetType(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "Experiment %s is now %s\n", exp.Slug, exp.Type.Label())
	return nil
}

func runExperimentDelete(cmd *cobra.Command, app *AppContext, args []string) error {
	ctx := cmd.Context()
	exp, err := app.Experiments.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if err := app.Lifecycle.Delete(ctx, exp.Slug); err != nil {
		return err
	}
	if err := deleteSnapshot(ctx, app, exp.RecipeSlug()); err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "Deleted experiment: %s\n", exp.Slug)
	return nil
}
