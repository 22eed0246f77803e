package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/legwork/qrcodes/api"
	"github.com/legwork/qrcodes/config"
	"github.com/legwork/qrcodes/qr"
	"github.com/legwork/qrcodes/store"
)

var version = "v0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var preview bool

	generate := func(cmd *cobra.Command, args []string) error {
		return runGenerate(configPath, preview, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	root := &cobra.Command{
		Use:          "legwork-qr",
		Short:        "Generate the QR code for the leg-work site",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         generate,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "legwork-qr.yaml", "Path to config file (.yaml or .toml)")
	root.Flags().BoolVar(&preview, "preview", false, "Also print the code to stderr as text")

	// --- generate command ----------------------------------------------------
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the QR code image to the output directory",
		Args:  cobra.NoArgs,
		RunE:  generate,
	}
	generateCmd.Flags().BoolVar(&preview, "preview", false, "Also print the code to stderr as text")
	root.AddCommand(generateCmd)

	// --- verify command ------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "verify [path]",
		Short: "Decode an image and check it carries the configured payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runVerify(configPath, path, cmd.OutOrStdout())
		},
	})

	// --- history command -----------------------------------------------------
	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded generations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(configPath, limit, cmd.OutOrStdout())
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show")
	root.AddCommand(historyCmd)

	// --- serve command -------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve QR code images over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	})

	// --- version command -----------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "legwork-qr %s\n", version)
		},
	})

	return root
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// runGenerate writes the image and prints the confirmation line to stdout.
// Logs go to stderr so stdout carries only that line.
func runGenerate(configPath string, preview bool, stdout, stderr io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg.LogLevel, stderr)
	slog.SetDefault(log)

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	res, err := qr.NewGenerator(nil, log).Generate(opts)
	if err != nil {
		return err
	}

	if preview {
		if err := opts.Encoder().Preview(stderr, opts.Payload); err != nil {
			log.Warn("preview failed", "error", err)
		}
	}

	if cfg.HistoryDB != "" {
		if err := recordGeneration(cfg, opts.Payload, res); err != nil {
			log.Warn("history not recorded", "error", err)
		}
	}

	fmt.Fprintf(stdout, "QR code generated and saved to %s\n", res.Path)
	return nil
}

func recordGeneration(cfg *config.Config, payload string, res qr.Result) error {
	if err := cfg.EnsureHistoryDir(); err != nil {
		return err
	}
	hs, err := store.NewHistoryStore(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer hs.Close()

	_, err = hs.Record(store.Generation{
		Payload: payload,
		Path:    res.Path,
		SHA256:  res.SHA256,
		Size:    res.Size,
	})
	return err
}

// runVerify decodes the image at path (the configured output when empty)
// and fails unless it carries the configured payload.
func runVerify(configPath, path string, stdout io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	if path == "" {
		path = opts.OutputPath()
	}

	text, err := qr.DecodeFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, text)

	if text != opts.Payload {
		return fmt.Errorf("%s carries %q, want %q", path, text, opts.Payload)
	}
	return nil
}

func runHistory(configPath string, limit int, stdout io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.HistoryDB == "" {
		return errors.New("history is disabled; set history_db in the config")
	}
	if limit <= 0 || limit > store.MaxListLimit {
		return fmt.Errorf("limit must be between 1 and %d, got %d", store.MaxListLimit, limit)
	}

	hs, err := store.NewHistoryStore(cfg.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer hs.Close()

	gens, err := hs.List(limit)
	if err != nil {
		return err
	}
	for _, g := range gens {
		fmt.Fprintf(stdout, "%s  %s  %s  %d bytes  %s\n",
			g.CreatedAt.Format(time.RFC3339), g.SHA256[:min(12, len(g.SHA256))], g.Path, g.Size, g.Payload)
	}
	return nil
}

// runServe runs the HTTP API until SIGINT or SIGTERM.
func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg.LogLevel, os.Stderr)
	slog.SetDefault(log)

	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	var history *store.HistoryStore
	if cfg.HistoryDB != "" {
		if err := cfg.EnsureHistoryDir(); err != nil {
			return err
		}
		history, err = store.NewHistoryStore(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer history.Close()
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: api.NewRouter(&api.Server{
			Options: opts,
			History: history,
			Log:     log,
			Version: version,
		}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}
	return nil
}
