package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/unpack/internal/config"
	"github.com/oakwood-commons/unpack/internal/web"
	"github.com/oakwood-commons/unpack/pkg/core"
	"github.com/oakwood-commons/unpack/pkg/logger"
	"github.com/oakwood-commons/unpack/pkg/settings"
)

// serveFn runs the server until ctx ends. Tests replace it.
var serveFn = func(ctx context.Context, srv *web.Server) error {
	return srv.Run(ctx)
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser front end",
		Long: `serve starts an HTTP server with a page that renders JSON as you type it.
The address defaults to server.addr from the config, then $` + config.EnvAddr + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := runParams(cmd)
			lgr := logger.FromContext(cmd.Context())

			cfg, err := loadConfig(params)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if params.MinLogLevel >= 0 {
				gin.SetMode(gin.ReleaseMode)
			}

			engine, err := core.New(core.WithRootToken(cfg.Render.RootToken), core.WithLogger(*lgr))
			if err != nil {
				return err
			}
			srv, err := web.New(cfg, engine, *lgr)
			if err != nil {
				return fmt.Errorf("prepare server: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(cmd.OutOrStdout(), "serving on http://%s\n", cfg.Server.Addr)
			return serveFn(ctx, srv)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, e.g. 127.0.0.1:8080")
	return cmd
}

// runParams returns the settings the root command stored in the context.
func runParams(cmd *cobra.Command) *settings.Run {
	if p, ok := settings.FromContext(cmd.Context()); ok {
		return p
	}
	return settings.NewCliParams()
}
