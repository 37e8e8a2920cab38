package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/experimenter/internal/domain"
)

var lifecycleCmd = &cobra.Command{
	Use:   "lifecycle",
	Short: "Move experiments through review and launch",
	Long: `Request, approve and reject lifecycle changes.

launch, pause and end put a request in review. approve accepts it and the
next "recipe publish" applies it. reject returns the experiment to its
previous state.`,
}

var lifecycleHistoryCmd = &cobra.Command{
	Use:   "history <experiment>",
	Short: "Show the change log of an experiment",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runLifecycleHistory),
}

var (
	lifecycleBy      string
	lifecycleMessage string
)

var lifecycleActions = []struct {
	action domain.Action
	short  string
}{
	{domain.ActionLaunch, "Request launch of a draft experiment"},
	{domain.ActionPause, "Request the end of enrollment for a live experiment"},
	{domain.ActionEnd, "Request the end of a live experiment"},
	{domain.ActionApprove, "Approve the request in review"},
	{domain.ActionReject, "Reject the request in review"},
}

func init() {
	lifecycleCmd.PersistentFlags().StringVar(&lifecycleBy, "by", "", "Who makes the change (required)")
	lifecycleCmd.PersistentFlags().StringVarP(&lifecycleMessage, "message", "m", "", "Rejection message")

	for _, a := range lifecycleActions {
		lifecycleCmd.AddCommand(&cobra.Command{
			Use:   string(a.action) + " <experiment>",
			Short: a.short,
			Args:  cobra.ExactArgs(1),
			RunE:  withApp(runLifecycleAction(a.action)),
		})
	}
	lifecycleCmd.AddCommand(lifecycleHistoryCmd)
}

func runLifecycleAction(action domain.Action) func(*cobra.Command, *AppContext, []string) error {
	return func(cmd *cobra.Command, app *AppContext, args []string) error {
		if lifecycleBy == "" {
			return fmt.Errorf("--by is required")
		}

		exp, log, err := app.Lifecycle.Apply(cmd.Context(), args[0], action, lifecycleBy, lifecycleMessage)
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "%s: %s/%s -> %s/%s\n", exp.Slug,
			deref(log.OldStatus), deref(log.OldPublishStatus), log.NewStatus, log.NewPublishStatus)
		return nil
	}
}

func runLifecycleHistory(cmd *cobra.Command, app *AppContext, args []string) error {
	history, err := app.Lifecycle.History(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(history) == 0 {
		printf(out, "No changes recorded\n")
		return nil
	}

	w := newTable(out)
	printf(w, "WHEN\tBY\tSTATUS\tPUBLISH\tMESSAGE\n")
	for _, c := range history {
		message := ""
		if c.Message != nil {
			message = *c.Message
		}
		printf(w, "%s\t%s\t%s -> %s\t%s -> %s\t%s\n",
			formatTime(c.ChangedOn), c.ChangedBy,
			deref(c.OldStatus), c.NewStatus,
			deref(c.OldPublishStatus), c.NewPublishStatus,
			orDash(message))
	}
	return w.Flush()
}

func deref[T ~string](p *T) string {
	if p == nil {
		return "-"
	}
	return string(*p)
}
