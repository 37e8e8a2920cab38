package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/experimenter/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and dashboard",
	Long: `Start the HTTP API and the experiments dashboard.

Examples:
  experimenter serve                # Listen on EXPERIMENTER_ADDR (default :8080)
  experimenter serve --addr :3000   # Listen on port 3000`,
	Args: cobra.NoArgs,
	RunE: withApp(runServe),
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides EXPERIMENTER_ADDR)")
}

func runServe(cmd *cobra.Command, app *AppContext, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := app.Config.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	return NewWebServer(app, addr).Start(ctx)
}

// NewWebServer builds the HTTP server over the application's services.
func NewWebServer(app *AppContext, addr string) *web.Server {
	return web.NewServer(web.Config{
		Addr:            addr,
		ShutdownTimeout: app.Config.ShutdownTimeout,
	}, web.Deps{
		Experiments: app.Experiments,
		Lifecycle:   app.Lifecycle,
		Publisher:   app.Publisher,
		Variants:    app.Repos.Variants,
		Buckets:     app.Repos.Buckets,
		Recipes:     app.Recipes,
		Catalog:     app.Catalog,
		Logger:      app.Logger.Named("web"),
	})
}
