// Package serve starts the HTTP API.
package serve

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fjacquet/pdf-ledger/cmd/root"
	"fjacquet/pdf-ledger/internal/api"
)

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API serving statement uploads, the financial FAQ, the chatbot
and Prometheus metrics. The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer(cmd)
	if err != nil {
		return err
	}
	cfg := c.GetConfig()
	if addr == "" {
		addr = cfg.Server.Addr
	}

	router := api.NewRouter(api.RouterConfig{
		Pipeline:       c.GetPipeline(),
		Snapshots:      c.GetSnapshots(),
		Metrics:        c.GetMetrics(),
		Logger:         c.GetLogger(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
		RequestTimeout: cfg.RequestTimeout(),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return api.NewServer(addr, router, c.GetLogger()).ListenAndServe(ctx)
}
