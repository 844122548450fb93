package cli

import (
	"github.com/spf13/cobra"

	"github.com/marcusdavidalo/anychargen/internal/server"
)

// defaultServeMaxCombinations bounds each websocket job unless --max or
// max_combinations says otherwise.
const defaultServeMaxCombinations = 1 << 24

func newServeCommand(a *app) *cobra.Command {
	var (
		addr    string
		origins []string
		ef      engineFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Stream combinations to websocket clients",
		Long: `serve accepts websocket connections on /ws. Each client sends
{"alphabet": "...", "length": N} and receives batch messages followed by one
complete message. A new request on the same connection replaces the running one.

Browsers may connect from the server's own host and from --allowed-origin.
Each job is limited to 16777216 combinations unless --max is given (--max 0
removes the limit).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.serveSettings(cmd, &ef)
			if cmd.Flags().Changed("addr") {
				s.addr = addr
			}
			if cmd.Flags().Changed("allowed-origin") {
				s.allowedOrigins = origins
			}
			return server.New(a.logger, s.allowedOrigins, s.schedulerOptions()...).ListenAndServe(cmd.Context(), s.addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringSliceVar(&origins, "allowed-origin", nil, "Extra browser origins allowed to connect ('*' for any)")
	ef.register(cmd)
	return cmd
}

// serveSettings merges engine flags and applies the serve default bound.
func (a *app) serveSettings(cmd *cobra.Command, ef *engineFlags) settings {
	s := a.settings
	ef.overlay(cmd, &s)
	if s.maxCombinations == 0 && !cmd.Flags().Changed("max") {
		s.maxCombinations = defaultServeMaxCombinations
	}
	return s
}
