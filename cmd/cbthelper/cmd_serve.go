package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cbthelper/internal/logging"
	mcpserver "cbthelper/internal/mcp"
	"cbthelper/internal/metrics"
)

var serveFlags struct {
	metricsAddr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing every engine operation
as a tool, plus the cbt:// resources and the self_reflection prompt.

Expired sessions are swept in the background. With --metrics-addr the
Prometheus collectors are served on /metrics. The server exits when the
client closes stdin or its parent process goes away.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.metricsAddr, "metrics-addr", "", "Serve /metrics on this address (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logging.New("serve")
	eng, st, err := openEngine()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	mcpserver.WatchParent(ctx, 0, cancel)

	srv := mcpserver.NewServer(eng)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		err := srv.MCPServer.Run(gctx, &sdkmcp.StdioTransport{})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		return eng.Sessions().RunSweeper(gctx, cfg.Session.SweepInterval)
	})

	addr := cfg.Metrics.Addr
	if serveFlags.metricsAddr != "" {
		addr = serveFlags.metricsAddr
	}
	if addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		hs := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			log.Info("serving metrics", "addr", addr)
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer scancel()
			return hs.Shutdown(sctx)
		})
	}

	log.Info("starting cbthelper MCP server over stdio",
		"version", version, "store", cfg.Store.Driver, "session_ttl", cfg.Session.TTL)
	err = g.Wait()
	log.Info("server stopped")
	return err
}
