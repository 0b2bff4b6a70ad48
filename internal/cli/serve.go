package cli

import (
	"github.com/spf13/cobra"

	"github.com/certforge/certforge/internal/server"
	"github.com/certforge/certforge/pkg/layout"
)

// serveCommand starts the HTTP server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the design and render API over HTTP",
		Long: `Serve the design and render API over HTTP.

  POST /api/generate-designs  {category, imageData}
  POST /api/render            {design, recipientName, date, signature, imageData, format}
  GET  /api/test              recovery self-test
  POST /api/test              {testJson}
  GET  /healthz

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if !cfg.HasAPIKey() {
				c.Logger.Warn("no generator API key configured; serving the built-in designs")
			}

			srv := server.New(runner,
				server.WithLogger(c.Logger),
				server.WithMaxUpload(cfg.Server.MaxUploadBytes),
				server.WithCanvas(layout.Canvas{Width: cfg.Canvas.Width, Height: cfg.Canvas.Height}),
				server.WithMaxCanvasSide(cfg.Canvas.MaxSide),
				server.WithModel(cfg.Generator.Model),
				server.WithTimeouts(cfg.Server.ReadTimeout.Duration, cfg.Server.WriteTimeout.Duration),
			)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
