// Command rsessiond serves one live RStudio session to MCP clients.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/statkit/rsessiond/server"
	"github.com/statkit/rsessiond/session/rstudio"
	"github.com/statkit/rsessiond/tools"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rsessiond",
		Short:         "MCP server exposing a live RStudio session",
		Long:          "rsessiond bridges MCP clients to one running RStudio session: console evaluation, environment inspection, open documents, plots, and the viewer pane.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rsessiond version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "rsessiond", version)
		},
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session over MCP (streamable HTTP by default, or stdio)",
		RunE:  runServe,
	}

	flags := cmd.Flags()
	flags.String("session-url", "http://127.0.0.1:16732", "base URL of the RStudio companion addin")
	flags.String("http", "127.0.0.1:16731", "listen address for the streamable HTTP transport")
	flags.Bool("stdio", false, "serve over stdin/stdout instead of HTTP")
	flags.Duration("call-timeout", 0, "per-call wait bound (0 disables; running R code is never interrupted)")
	flags.String("heartbeat", "@every 30s", "session liveness probe schedule (empty disables)")
	flags.String("mcp-json", "", "write a .mcp.json discovery file at this path (HTTP mode only)")
	flags.String("log-level", "info", "log level: trace, debug, info, warn, error")

	return cmd
}

// serveSettings resolves flag, environment, and default values. Every flag
// can also be set through the environment, e.g. RSESSIOND_SESSION_URL.
func serveSettings(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("RSESSIOND")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	return v, nil
}

// logAdapter feeds the libraries' Logf interfaces into zerolog.
type logAdapter struct {
	log zerolog.Logger
}

func (a logAdapter) Logf(format string, args ...any) {
	a.log.Info().Msgf(format, args...)
}

func runServe(cmd *cobra.Command, _ []string) error {
	v, err := serveSettings(cmd)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	// Logs go to stderr: in stdio mode stdout carries the protocol.
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("component", "rsessiond").Logger()
	adapter := logAdapter{log: log}

	client, err := rstudio.New(rstudio.Config{
		BaseURL: v.GetString("session-url"),
		Logger:  adapter,
	})
	if err != nil {
		return err
	}

	svc, err := tools.New(tools.Config{
		Session:     client,
		CallTimeout: v.GetDuration("call-timeout"),
		Logger:      adapter,
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	srv, err := server.New(server.Config{
		Service:   svc,
		Name:      "rsessiond",
		Version:   version,
		Heartbeat: v.GetString("heartbeat"),
		Logger:    adapter,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if v.GetBool("stdio") {
		return srv.ServeStdio(ctx)
	}

	addr := v.GetString("http")
	if path := v.GetString("mcp-json"); path != "" {
		if err := server.WriteDiscoveryFile(path, discoveryURL(addr)); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("wrote discovery file")
	}

	start := time.Now()
	err = srv.ServeHTTP(ctx, addr)
	log.Info().Dur("uptime", time.Since(start)).Msg("server stopped")
	return err
}

// discoveryURL derives the client-facing URL from a listen address.
func discoveryURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr + "/"
}
