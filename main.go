package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iedon/docnav-go/config"
	"github.com/iedon/docnav-go/server"
	"github.com/iedon/docnav-go/site"
	"github.com/iedon/docnav-go/templatex"
)

type app struct {
	cfgPath  string
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "docnav",
		Short:         "Build outline-driven documentation navigation",
		Version:       SERVER_SIGNATURE,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.LogLevel = strings.ToLower(strings.TrimSpace(a.logLevel))
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			a.cfg = cfg
			a.logger = newLogger(cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "path to configuration file (JSON or YAML)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newBuildCmd(a),
		newServeCmd(a),
		newOutlineCmd(a),
	)
	return root
}

func (a *app) service() (*site.Service, error) {
	templates, err := templatex.Load(a.cfg.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	return site.NewService(a.cfg, templates, a.logger), nil
}

func newBuildCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the host page, its TOC and linked pages into the output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := svc.BuildStatic(ctx)
			if err != nil {
				return fmt.Errorf("build: %w", err)
			}
			if strict && len(report.Missing) > 0 {
				return fmt.Errorf("%d toc targets have no source: %s", len(report.Missing), strings.Join(report.Missing, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when a toc entry has no source page")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Build the site and serve it with the preview API",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.Info("starting", "version", SERVER_SIGNATURE, "listen", a.cfg.Listen)
			go rebuildLoop(ctx, svc, a.cfg.RebuildInterval, a.logger)

			srv := server.New(a.cfg, svc, a.logger, SERVER_SIGNATURE)
			return srv.Start(ctx)
		},
	}
}

func rebuildLoop(ctx context.Context, svc *site.Service, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.BuildStatic(ctx); err != nil {
				logger.Warn("rebuild", "error", err)
			}
		}
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
