package cli

import (
	"github.com/spf13/cobra"

	"github.com/raysh454/rawdata/internal/demoserver"
)

func newDemoCmd(opts *rootOptions) *cobra.Command {
	cfg := demoserver.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Serve fixture pages to try scans against",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := demoserver.NewDemoServer(cfg, opts.logger)
			if err != nil {
				return err
			}
			return ds.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "Port to listen on")
	cmd.Flags().IntVar(&cfg.InitialVersion, "start-version", cfg.InitialVersion, "Version every page starts at")
	return cmd
}
