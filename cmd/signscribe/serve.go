package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/signscribe/internal/app"
	"github.com/ayusman/signscribe/internal/capture"
	"github.com/ayusman/signscribe/internal/server"
	"github.com/ayusman/signscribe/internal/session"
	"github.com/ayusman/signscribe/internal/tray"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	addr      string
	camera    int
	plugins   string
	saveDir   string
	cooldown  time.Duration
	noMirror  bool
	noTray    bool
	autoStart bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the recognition loop with the dashboard API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", envOr(envAddr, ":8080"), "HTTP listen address")
	cmd.Flags().IntVar(&opts.camera, "camera", 0, "camera device index")
	cmd.Flags().StringVar(&opts.plugins, "plugins", envOr(envPlugins, filepath.Join(dataDir(), "plugins")), "plugin directory")
	cmd.Flags().StringVar(&opts.saveDir, "save-dir", envOr(envSaveDir, ""), "directory for saved transcripts (default: working directory)")
	cmd.Flags().DurationVar(&opts.cooldown, "cooldown", 0, "hold time before a sign is confirmed (overrides the stored setting)")
	cmd.Flags().BoolVar(&opts.noMirror, "no-mirror", false, "do not mirror camera frames")
	cmd.Flags().BoolVar(&opts.noTray, "no-tray", false, "run without the system tray menu")
	cmd.Flags().BoolVar(&opts.autoStart, "start", false, "start recognizing immediately instead of paused")
	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	st, err := getStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	camera := capture.DefaultConfig()
	camera.DeviceID = opts.camera
	camera.Mirror = !opts.noMirror

	a, err := app.New(app.Config{
		Store:     st,
		PluginDir: opts.plugins,
		SaveDir:   opts.saveDir,
		Camera:    camera,
		Session:   session.DefaultConfig(),
	})
	if err != nil {
		return err
	}
	defer a.Stop()

	if cmd.Flags().Changed("cooldown") {
		if opts.cooldown <= 0 {
			return fmt.Errorf("--cooldown must be positive")
		}
		a.Session().SetCooldown(opts.cooldown)
	}
	a.SetEnabled(opts.autoStart)

	if err := a.Start(); err != nil {
		return err
	}

	webDir := findWebDir()
	if webDir != "" {
		slog.Info("serving dashboard", "dir", webDir)
	}

	httpSrv := &http.Server{
		Addr:    opts.addr,
		Handler: server.New(server.Config{StaticDir: webDir, Store: st, App: a}),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", opts.addr, "session", a.Session().ID())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serveErr error
	if opts.noTray {
		select {
		case <-ctx.Done():
		case serveErr = <-errCh:
		}
	} else {
		t := newTray(ctx, a, opts.addr, stop)
		exitCh := make(chan error, 1)
		go func() {
			var err error
			select {
			case <-ctx.Done():
			case err = <-errCh:
			}
			exitCh <- err
			t.Quit()
		}()
		// The tray owns the main goroutine until Quit.
		t.Run()
		stop()
		serveErr = <-exitCh
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	return serveErr
}

func newTray(ctx context.Context, a *app.App, addr string, quit func()) *tray.Tray {
	var t *tray.Tray
	refresh := func() { t.SetText(a.Session().Transcript().Text) }

	t = tray.New(a.IsEnabled(), tray.Callbacks{
		Toggle: a.SetEnabled,
		Space: func() {
			a.Session().AppendSpace()
			refresh()
		},
		Backspace: func() {
			a.Session().Backspace()
			refresh()
		},
		Clear: func() {
			a.Session().Clear()
			refresh()
		},
		Save: func() {
			if _, err := a.Save(time.Now()); err != nil {
				slog.Warn("save failed", "error", err)
			}
		},
		Speak: func() {
			go func() {
				if err := a.Speak(ctx); err != nil {
					slog.Warn("speak failed", "error", err)
				}
			}()
		},
		Dashboard: func() {
			if err := openBrowser(dashboardURL(addr)); err != nil {
				slog.Warn("opening dashboard", "error", err)
			}
		},
		Quit: quit,
	})

	a.OnConfirm(func(e session.Event) {
		t.SetLastSign(e.Sign.String())
		refresh()
	})
	return t
}

// dashboardURL turns a listen address into a browsable URL.
func dashboardURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
