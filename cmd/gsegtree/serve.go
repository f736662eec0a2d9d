package main

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/gordian-engine/gsegtree/sserver"
	"github.com/spf13/cobra"
)

func newServeCmd(logLevel *string) *cobra.Command {
	var (
		configPath string
		listen     string
		maxLen     int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve engines over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := defaultConfig()
			if configPath != "" {
				var err error
				if cfg, err = loadConfig(configPath); err != nil {
					return err
				}
			}

			// Explicit flags win over the file.
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("max-len") {
				cfg.MaxLen = maxLen
			}
			if *logLevel != "" {
				cfg.LogLevel = *logLevel
			}

			log, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}

			ln, err := listenOn(cfg.Listen)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			h := sserver.NewHTTPServer(ctx, log, sserver.HTTPServerConfig{
				Listener: ln,
				Trees:    sserver.NewRegistry(),
				MaxLen:   cfg.MaxLen,
			})
			log.Info("Serving", "addr", ln.Addr().String(), "max_len", cfg.MaxLen)

			h.Wait()
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address, host:port or unix:///path")
	cmd.Flags().IntVar(&maxLen, "max-len", 0, "largest accepted input length, 0 for no limit")

	return cmd
}

func listenOn(addr string) (net.Listener, error) {
	if path, ok := strings.CutPrefix(addr, "unix://"); ok {
		// A stale socket from an earlier run would make Listen fail.
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
		ln, err := net.Listen("unix", path)
		if err != nil {
			return nil, fmt.Errorf("listen on %s: %w", addr, err)
		}
		return ln, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return ln, nil
}
