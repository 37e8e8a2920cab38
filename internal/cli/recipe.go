package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/experimenter/internal/adapters/bolt"
	"github.com/emiliopalmerini/experimenter/internal/recipe"
)

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Build, validate and publish recipes",
}

var recipeShowCmd = &cobra.Command{
	Use:   "show <experiment>",
	Short: "Print the recipe an experiment would publish",
	Long:  `Serialize and validate an experiment's recipe without storing it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runRecipeShow),
}

var recipeValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a recipe document against the schema",
	Long: `Validate a recipe document against the recipe schema. Use "-" to read stdin.

Every violation is reported with its location in the document.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecipeValidate,
}

var recipePublishCmd = &cobra.Command{
	Use:   "publish <experiment>",
	Short: "Publish an experiment's recipe",
	Long: `Serialize, validate and store an experiment's recipe. An approved lifecycle
request is applied first, so the published recipe reflects it.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runRecipePublish),
}

var recipeGetCmd = &cobra.Command{
	Use:   "get <recipe-slug>",
	Short: "Print a published recipe",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runRecipeGet),
}

var recipeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List published recipes",
	Args:  cobra.NoArgs,
	RunE:  withApp(runRecipeList),
}

var recipeExportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write every published recipe to <dir>/<recipe-slug>.json",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runRecipeExport),
}

var recipeSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the recipe JSON schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := cmd.OutOrStdout().Write(recipe.Schema())
		return err
	},
}

func init() {
	recipeCmd.AddCommand(recipeShowCmd)
	recipeCmd.AddCommand(recipeValidateCmd)
	recipeCmd.AddCommand(recipePublishCmd)
	recipeCmd.AddCommand(recipeGetCmd)
	recipeCmd.AddCommand(recipeListCmd)
	recipeCmd.AddCommand(recipeExportCmd)
	recipeCmd.AddCommand(recipeSchemaCmd)
}

func runRecipeShow(cmd *cobra.Command, app *AppContext, args []string) error {
	r, err := app.Publisher.Preview(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), r)
}

func runRecipeValidate(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read recipe: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := recipe.Validate(data); err != nil {
		var ve *recipe.ValidationError
		if errors.As(err, &ve) {
			for _, v := range ve.Violations {
				printf(out, "%s: %s\n", orDash(v.InstanceLocation), v.Message)
			}
		}
		return err
	}
	printf(out, "Recipe is valid\n")
	return nil
}

func runRecipePublish(cmd *cobra.Command, app *AppContext, args []string) error {
	res, err := app.Publisher.Publish(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printf(out, "Published %s at %s\n", res.Snapshot.RecipeSlug, formatTime(res.Snapshot.PublishedAt))
	if res.ChangeLog != nil {
		printf(out, "Experiment is now %s/%s\n", res.Experiment.Status, res.Experiment.PublishStatus)
	}
	return nil
}

func runRecipeGet(cmd *cobra.Command, app *AppContext, args []string) error {
	snapshot, err := app.Recipes.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := out.Write(snapshot.Recipe); err != nil {
		return err
	}
	printf(out, "\n")
	return nil
}

func runRecipeList(cmd *cobra.Command, app *AppContext, _ []string) error {
	snapshots, err := app.Recipes.List(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(snapshots) == 0 {
		printf(out, "No published recipes\n")
		return nil
	}

	w := newTable(out)
	printf(w, "RECIPE\tEXPERIMENT\tPUBLISHED\n")
	for _, s := range snapshots {
		printf(w, "%s\t%s\t%s\n", s.RecipeSlug, s.ExperimentSlug, formatTime(s.PublishedAt))
	}
	return w.Flush()
}

func runRecipeExport(cmd *cobra.Command, app *AppContext, args []string) error {
	dir := args[0]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	snapshots, err := app.Recipes.List(cmd.Context())
	if err != nil {
		return err
	}
	for _, s := range snapshots {
		path := filepath.Join(dir, s.RecipeSlug+".json")
		if err := os.WriteFile(path, s.Recipe, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	printf(cmd.OutOrStdout(), "Exported %d recipes to %s\n", len(snapshots), dir)
	return nil
}

// deleteSnapshot removes a published recipe; a missing one is not an error.
func deleteSnapshot(ctx context.Context, app *AppContext, recipeSlug string) error {
	if err := app.Recipes.Delete(ctx, recipeSlug); err != nil && !errors.Is(err, bolt.ErrRecipeNotFound) {
		return err
	}
	return nil
}
