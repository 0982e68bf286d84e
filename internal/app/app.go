// Package app runs the recognition loop: it reads mirrored camera frames,
// estimates hand landmarks, feeds the first hand into a recognition session
// and fans the results out to storage, plugins and presentation layers.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/signscribe/internal/capture"
	"github.com/ayusman/signscribe/internal/detector"
	"github.com/ayusman/signscribe/internal/plugin"
	"github.com/ayusman/signscribe/internal/session"
	"github.com/ayusman/signscribe/internal/store"
	"github.com/ayusman/signscribe/internal/transcript"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate while the scene is still and empty.
	IdleFPS = 5
	// ActiveFPS is the frame rate while a hand is tracked or the scene moves.
	ActiveFPS = 30
)

// SpeechPlugin is the plugin used by Speak.
const SpeechPlugin = "speech"

// Config holds configuration options for the application.
type Config struct {
	Store     *store.Store
	PluginDir string
	// SaveDir receives saved transcripts; empty means the working directory.
	SaveDir       string
	Camera        capture.Config
	Detector      detector.Config
	Session       session.Config
	PluginTimeout time.Duration
	// ActivityChange is the changed-pixel percentage that counts as motion.
	ActivityChange float64
}

// Update is published after every processed frame.
type Update struct {
	Result      session.Result `json:"result"`
	Status      session.Status `json:"status"`
	HandPresent bool           `json:"hand_present"`
	FPS         float64        `json:"fps"`
	At          time.Time      `json:"at"`
}

// Status is the application-level view exposed to the API and tray.
type Status struct {
	session.Status
	FPS     float64 `json:"fps"`
	Running bool    `json:"running"`
}

// App is the main application that orchestrates sign recognition and action execution.
type App struct {
	config     Config
	camera     capture.Camera
	activity   *capture.Activity
	detector   detector.Detector
	session    *session.Session
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor
	fps        *capture.FPSMeter
	preview    *Preview

	mu       sync.RWMutex
	stopCh   chan struct{}
	done     chan struct{}
	cancel   context.CancelFunc
	ctx      context.Context
	handSeen bool
	stopOnce sync.Once

	listenersMu sync.RWMutex
	listeners   []func(Update)
}

// New creates an App and its recognition session. Persisted settings in the
// store override cfg.Session, and the session is recorded in the store.
func New(cfg Config) (*App, error) {
	if cfg.Camera == (capture.Config{}) {
		cfg.Camera = capture.DefaultConfig()
	}
	if cfg.Detector == (detector.Config{}) {
		cfg.Detector = detector.DefaultConfig()
	}
	cfg.Session = withSessionDefaults(cfg.Session)

	if cfg.Store != nil {
		loaded, err := loadSessionConfig(cfg.Store.Settings(), cfg.Session)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		cfg.Session = loaded
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		config:     cfg,
		camera:     capture.NewCamera(cfg.Camera),
		activity:   capture.NewActivity(cfg.ActivityChange, 0),
		session:    session.New(cfg.Session),
		pluginMgr:  plugin.NewManager(cfg.PluginDir),
		pluginExec: plugin.NewExecutor(cfg.PluginTimeout),
		fps:        capture.NewFPSMeter(time.Second),
		preview:    newPreview(),
		ctx:        ctx,
		cancel:     cancel,
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(cfg.Detector); err == nil {
		a.detector = mp
		slog.Info("using MediaPipe landmark service")
	} else {
		slog.Warn("MediaPipe not available, using mock detector", "error", err)
		a.detector = detector.NewMockDetector()
	}

	if cfg.Store != nil {
		err := cfg.Store.Sessions().Create(&store.Session{
			ID:         a.session.ID(),
			CooldownMs: cfg.Session.Cooldown.Milliseconds(),
		})
		if err != nil {
			cancel()
			return nil, fmt.Errorf("record session: %w", err)
		}
	}

	a.session.OnConfirm(a.handleConfirm)
	return a, nil
}

// Session returns the recognition session.
func (a *App) Session() *session.Session {
	return a.session
}

// SetEnabled pauses or resumes recognition.
func (a *App) SetEnabled(enabled bool) {
	a.session.SetEnabled(enabled)
	slog.Info("recognition toggled", "enabled", enabled)
}

// IsEnabled reports whether recognition is running.
func (a *App) IsEnabled() bool {
	return a.session.Enabled()
}

// SetDetector replaces the landmark estimator.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the landmark estimator.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// SetCamera replaces the frame source. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Camera returns the frame source.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Preview returns the latest annotated frame buffer.
func (a *App) Preview() *Preview {
	return a.preview
}

// Store returns the configured store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// OnUpdate registers fn to receive every frame update. Callbacks run on the
// capture goroutine and must not block.
func (a *App) OnUpdate(fn func(Update)) {
	if fn == nil {
		return
	}
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// OnConfirm registers fn to receive every confirmed sign.
func (a *App) OnConfirm(fn func(session.Event)) {
	a.session.OnConfirm(fn)
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Status returns the current recognition status.
func (a *App) Status() Status {
	a.mu.RLock()
	running := a.stopCh != nil
	a.mu.RUnlock()

	return Status{
		Status:  a.session.Status(),
		FPS:     a.fps.Rate(time.Now()),
		Running: running,
	}
}

// Start opens the camera and begins the recognition loop. Plugins are
// discovered and watched for changes until Stop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.pluginMgr.Discover(); err != nil {
		slog.Warn("plugin discovery failed", "dir", a.config.PluginDir, "error", err)
	}
	if a.config.PluginDir != "" {
		go func() {
			if err := a.pluginMgr.Watch(a.ctx); err != nil {
				slog.Warn("plugin watcher stopped", "error", err)
			}
		}()
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.camera.SetFPS(ActiveFPS)

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done)

	slog.Info("recognition loop started", "session", a.session.ID())
	return nil
}

// Stop halts the recognition loop, releases capture resources and closes
// the stored session. An App cannot be started again after Stop.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}

	a.stopOnce.Do(a.release)
}

func (a *App) release() {
	a.cancel()

	if err := a.Camera().Close(); err != nil {
		slog.Error("closing camera", "error", err)
	}
	a.activity.Close()

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			slog.Error("closing detector", "error", err)
		}
	}

	if a.config.Store != nil {
		if err := a.config.Store.Sessions().End(a.session.ID(), time.Now()); err != nil {
			slog.Error("closing session record", "error", err)
		}
	}

	slog.Info("recognition loop stopped")
}

// Save writes the transcript to a timestamped file in the save directory and
// records it in the store. Empty text is refused with transcript.ErrNoText.
func (a *App) Save(now time.Time) (string, error) {
	snap := a.session.Transcript()

	dir := a.config.SaveDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}

	path, err := transcript.Save(dir, snap.Text, now)
	if err != nil {
		return "", err
	}
	slog.Info("transcript saved", "path", path, "signs", snap.SignCount)

	if a.config.Store != nil {
		err := a.config.Store.Transcripts().Create(&store.SavedTranscript{
			ID:        uuid.New().String(),
			SessionID: a.session.ID(),
			Text:      snap.Text,
			Path:      path,
			SignCount: snap.SignCount,
			WordCount: snap.WordCount,
			SavedAt:   now,
		})
		if err != nil {
			return path, fmt.Errorf("record transcript: %w", err)
		}
	}

	return path, nil
}

// Speak reads the transcript aloud through the speech plugin.
func (a *App) Speak(ctx context.Context) error {
	text := a.session.Transcript().Text
	if strings.TrimSpace(text) == "" {
		return transcript.ErrNoText
	}

	p, err := a.pluginMgr.Get(SpeechPlugin)
	if err != nil {
		return fmt.Errorf("speak: %w", err)
	}

	resp, err := a.pluginExec.Execute(ctx, p, &plugin.Request{Action: "say", Text: text})
	if err != nil {
		return fmt.Errorf("speak: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("speak: %s", resp.Error)
	}
	return nil
}

func (a *App) emit(u Update) {
	a.listenersMu.RLock()
	listeners := make([]func(Update), len(a.listeners))
	copy(listeners, a.listeners)
	a.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(u)
	}
}
