package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/experiments"
)

var variantCmd = &cobra.Command{
	Use:   "variant",
	Short: "Manage experiment branches",
}

var variantAddCmd = &cobra.Command{
	Use:   "add <experiment> <slug>",
	Short: "Add a branch to an editable experiment",
	Long: `Add a branch to an editable experiment.

Examples:
  experimenter variant add pinned-tabs control --ratio 50 --control
  experimenter variant add pinned-tabs treatment --ratio 50 --value '{"enabled":true}'`,
	Args: cobra.ExactArgs(2),
	RunE: withApp(runVariantAdd),
}

var variantListCmd = &cobra.Command{
	Use:   "list <experiment>",
	Short: "List the branches of an experiment",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runVariantList),
}

var (
	variantName        string
	variantDescription string
	variantRatio       int
	variantValue       string
	variantControl     bool
)

func init() {
	variantCmd.AddCommand(variantAddCmd)
	variantCmd.AddCommand(variantListCmd)

	f := variantAddCmd.Flags()
	f.StringVarP(&variantName, "name", "n", "", "Display name (default: slug)")
	f.StringVarP(&variantDescription, "description", "d", "", "Branch description")
	f.IntVarP(&variantRatio, "ratio", "r", 0, "Relative share of enrolled users (0 splits all branches evenly)")
	f.StringVar(&variantValue, "value", "", "JSON payload delivered to the branch")
	f.BoolVar(&variantControl, "control", false, "Mark as the control branch")
}

func runVariantAdd(cmd *cobra.Command, app *AppContext, args []string) error {
	in := experiments.VariantInput{
		Slug:        args[1],
		Name:        variantName,
		Description: variantDescription,
		Ratio:       variantRatio,
		IsControl:   variantControl,
	}
	if variantValue != "" {
		if !json.Valid([]byte(variantValue)) {
			return fmt.Errorf("%w: --value is not valid JSON", domain.ErrInvalidInput)
		}
		in.Value = json.RawMessage(variantValue)
	}

	v, err := app.Experiments.AddVariant(cmd.Context(), args[0], in)
	if err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "Added branch %s to %s (ratio %d)\n", v.Slug, args[0], v.Ratio)
	return nil
}

func runVariantList(cmd *cobra.Command, app *AppContext, args []string) error {
	variants, err := app.Experiments.Variants(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(variants) == 0 {
		printf(out, "No branches found\n")
		return nil
	}
	if err := domain.ValidateControl(variants); err != nil {
		printf(out, "warning: %v\n\n", err)
	}

	w := newTable(out)
	printf(w, "SLUG\tNAME\tRATIO\tCONTROL\tVALUE\n")
	for _, v := range variants {
		value := "null"
		if v.Value != nil {
			value = *v.Value
		}
		printf(w, "%s\t%s\t%d\t%t\t%s\n", v.Slug, v.Name, v.Ratio, v.IsControl, value)
	}
	return w.Flush()
}
