package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay and scan API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				opts.cfg.Server.ListenAddr = listen
			}

			a, err := opts.application()
			if err != nil {
				return err
			}
			defer shutdown(a, opts.logger)
			if err := a.Start(); err != nil {
				return err
			}

			srv, err := server.NewServer(server.Config{App: a, Logger: opts.logger})
			if err != nil {
				return err
			}
			defer srv.Close()

			httpSrv := srv.HTTPServer()
			errCh := make(chan error, 1)
			go func() { errCh <- httpSrv.ListenAndServe() }()
			opts.logger.Info("server listening", logging.Field{Key: "addr", Value: httpSrv.Addr})

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			opts.logger.Info("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(ctx); err != nil {
				return err
			}
			if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config, :8080)")
	return cmd
}
