// Command raycoord is the distributed raytrace coordinator: it accepts a
// fixed roster of rendering workers over TCP, drives them through
// initialization, render, and camera-movement phases, and persists the
// resulting frames to disk (see internal/session).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hatchway/raycoord/internal/camera"
	"github.com/hatchway/raycoord/internal/config"
	"github.com/hatchway/raycoord/internal/display"
	"github.com/hatchway/raycoord/internal/frame"
	"github.com/hatchway/raycoord/internal/manifest"
	"github.com/hatchway/raycoord/internal/roster"
	"github.com/hatchway/raycoord/internal/session"
	"github.com/hatchway/raycoord/internal/snapshot"
	"github.com/hatchway/raycoord/internal/wire"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, logOutput *os.File) int {
	fs := flag.NewFlagSet("raycoord", flag.ContinueOnError)
	cfg, err := config.ParseFlags(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(logOutput, err)
		return 2
	}

	log := newLogger(logOutput, cfg.Verbosity)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return 2
	}

	log.Info("awaiting worker roster", "addr", cfg.Addr(), "client_count", cfg.ClientCount)
	workers, err := roster.Accept(cfg.Addr(), cfg.ClientCount, cfg.ReadTimeout)
	if err != nil {
		log.Error("roster assembly failed", "error", err)
		return exitCode(err)
	}
	defer func() {
		for _, w := range workers {
			w.Close()
		}
	}()

	buf, err := frame.New(cfg.Width, cfg.Height)
	if err != nil {
		log.Error("invalid frame dimensions", "error", err)
		return 2
	}

	ctrl := session.New(workers, buf, cfg.ReadTimeout, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Warn("shutdown signal received, terminating session")
		ctrl.Terminate()
	}()

	log.Info("initializing workers", "scene", cfg.Scene, "width", cfg.Width, "height", cfg.Height)
	if err := ctrl.InitAll(cfg.Width, cfg.Height, cfg.Scene); err != nil {
		log.Error("initialization failed", "error", err)
		return exitCode(err)
	}

	enc := snapshot.PNGEncoder{}

	if cfg.Interactive {
		err = runInteractive(ctx, ctrl, cfg, enc, log)
	} else if cfg.ScriptedCycles <= 1 {
		err = runSingle(ctrl, cfg, enc, log)
	} else {
		err = runScripted(ctrl, cfg, enc, log)
	}
	if err != nil {
		log.Error("session ended in error", "error", err, "state", ctrl.State().String())
		return exitCode(err)
	}

	log.Info("session complete")
	return 0
}

func runSingle(ctrl *session.Controller, cfg config.Config, enc snapshot.Encoder, log *slog.Logger) error {
	path := filepath.Join(cfg.OutDir, snapshot.Filename(0))
	if err := ctrl.RunSingle(enc, display.NullSurface{}, path); err != nil {
		return err
	}
	return writeManifest(cfg, ctrl, 0, path, log)
}

func runScripted(ctrl *session.Controller, cfg config.Config, enc snapshot.Encoder, log *slog.Logger) error {
	if !cfg.ManifestEnabled {
		return ctrl.RunScripted(cfg.ScriptedCycles, enc, display.NullSurface{}, cfg.OutDir)
	}

	for cyc := 1; cyc <= cfg.ScriptedCycles; cyc++ {
		if err := ctrl.RenderAll(); err != nil {
			return fmt.Errorf("cycle %d: %w", cyc, err)
		}
		path := filepath.Join(cfg.OutDir, snapshot.Filename(cyc))
		if err := snapshot.Save(enc, ctrl.Buf, path); err != nil {
			return fmt.Errorf("cycle %d: %w", cyc, err)
		}
		if err := writeManifest(cfg, ctrl, cyc, path, log); err != nil {
			return fmt.Errorf("cycle %d: %w", cyc, err)
		}
		if err := ctrl.BroadcastCAM(camMnemonicForward); err != nil {
			return fmt.Errorf("cycle %d: %w", cyc, err)
		}
	}
	return nil
}

const camMnemonicForward = "tF"

func runInteractive(ctx context.Context, ctrl *session.Controller, cfg config.Config, enc snapshot.Encoder, log *slog.Logger) error {
	linkCh := make(chan *camera.Link, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		link, err := camera.Upgrade(w, r, cfg.ReadTimeout)
		if err != nil {
			log.Error("websocket upgrade failed", "error", err)
			return
		}
		select {
		case linkCh <- link:
		default:
			link.Close()
		}
	})

	srv := &http.Server{Addr: cfg.WSAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("preview server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("awaiting interactive preview connection", "ws_addr", cfg.WSAddr)
	var link *camera.Link
	select {
	case link = <-linkCh:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer link.Close()

	path := filepath.Join(cfg.OutDir, snapshot.Filename(0))
	if err := ctrl.RunInteractive(link, enc, link, path); err != nil {
		return err
	}
	return writeManifest(cfg, ctrl, 0, path, log)
}

func writeManifest(cfg config.Config, ctrl *session.Controller, cycle int, snapshotPath string, log *slog.Logger) error {
	if !cfg.ManifestEnabled {
		return nil
	}
	m := manifest.Build(cycle, cfg.Width, cfg.Height, ctrl.Workers)
	path := manifest.SidecarPath(snapshotPath)
	if err := manifest.Write(m, path); err != nil {
		return err
	}
	log.Debug("wrote manifest", "path", path)
	return nil
}

func newLogger(w *os.File, verbosity int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbosity >= 3:
		level = slog.LevelDebug
	case verbosity >= 1:
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// exitCode maps a fatal session error to a non-zero process exit status.
// The spec leaves the exact codes unspecified beyond "non-zero"; distinct
// values make the taxonomy visible to a caller inspecting $?.
func exitCode(err error) int {
	switch {
	case errors.Is(err, roster.ErrBindFailed):
		return 10
	case errors.Is(err, roster.ErrAcceptFailed), errors.Is(err, roster.ErrHandshakeFailed):
		return 11
	case errors.Is(err, wire.ErrIOTimeout):
		return 12
	case errors.Is(err, wire.ErrProtocolViolation), errors.Is(err, wire.ErrMalformedSize), errors.Is(err, wire.ErrMissingTerminator):
		return 13
	case errors.Is(err, snapshot.ErrEncodeFailed):
		return 14
	default:
		return 1
	}
}
