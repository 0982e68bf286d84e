package app

import (
	"fmt"
	"log/slog"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/signscribe/internal/detector"
	"github.com/ayusman/signscribe/internal/session"
)

// runPipeline is the capture loop. It ticks at ActiveFPS while a hand is
// tracked or the scene moves, and drops to IdleFPS once the scene has been
// still and empty for the idle period.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	activeMode := true
	ticker := time.NewTicker(time.Second / ActiveFPS)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			frame, err := a.Camera().ReadFrame()
			if err != nil {
				slog.Debug("reading frame", "error", err)
				continue
			}

			update, err := a.ProcessFrame(frame, now)
			frame.Close()
			if err != nil {
				slog.Warn("processing frame", "error", err)
				continue
			}

			wantActive := update.HandPresent || !a.activity.Idle(now)
			if wantActive != activeMode {
				activeMode = wantActive
				fps := IdleFPS
				if activeMode {
					fps = ActiveFPS
				}
				a.Camera().SetFPS(fps)
				ticker.Reset(time.Second / time.Duration(fps))
				slog.Debug("capture rate changed", "fps", fps)
			}
		}
	}
}

// ProcessFrame runs one mirrored frame through landmark estimation and the
// recognition session, refreshes the preview and publishes an Update.
// Landmark estimation is skipped while the scene is idle and no hand was
// seen on the previous frame.
func (a *App) ProcessFrame(frame *gocv.Mat, now time.Time) (Update, error) {
	a.fps.Tick(now)
	a.activity.Observe(frame, now)

	update := Update{At: now}
	var hand *detector.HandLandmarks

	if a.session.Enabled() {
		a.mu.RLock()
		skip := !a.handSeen && a.activity.Idle(now)
		a.mu.RUnlock()

		if skip {
			a.session.NoHand()
		} else {
			res, h, err := a.recognize(frame, now)
			if err != nil {
				return update, err
			}
			update.Result = res
			update.HandPresent = h != nil
			hand = h
		}
	}

	a.mu.Lock()
	a.handSeen = update.HandPresent
	a.mu.Unlock()

	update.Status = a.session.Status()
	update.FPS = a.fps.Rate(now)

	a.preview.Render(frame, hand, update)
	a.emit(update)
	return update, nil
}

// recognize estimates landmarks and feeds the first hand to the session.
// A nil hand means none was found.
func (a *App) recognize(frame *gocv.Mat, now time.Time) (session.Result, *detector.HandLandmarks, error) {
	hands, err := a.Detector().Detect(frame)
	if err != nil {
		return session.Result{}, nil, fmt.Errorf("detect hands: %w", err)
	}

	if len(hands) == 0 {
		a.session.NoHand()
		return session.Result{}, nil, nil
	}

	hand := hands[0]
	res, err := a.session.Process(&hand, now)
	if err != nil {
		return session.Result{}, nil, err
	}
	return res, &hand, nil
}
