package app

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ayusman/signscribe/internal/hold"
	"github.com/ayusman/signscribe/internal/session"
	"github.com/ayusman/signscribe/internal/sign"
	"github.com/ayusman/signscribe/internal/store"
	"github.com/ayusman/signscribe/internal/transcript"
)

// ErrInvalidSettings is returned when a settings update is rejected.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the persisted recognition tunables.
type Settings struct {
	CooldownMs      int64           `json:"cooldown_ms"`
	HistoryCapacity int             `json:"history_capacity"`
	Thresholds      sign.Thresholds `json:"thresholds"`
}

// Validate checks the settings before they are stored.
func (s Settings) Validate() error {
	if s.CooldownMs <= 0 {
		return fmt.Errorf("%w: cooldown_ms must be positive", ErrInvalidSettings)
	}
	if s.HistoryCapacity <= 0 {
		return fmt.Errorf("%w: history_capacity must be positive", ErrInvalidSettings)
	}
	if err := s.Thresholds.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

func withSessionDefaults(cfg session.Config) session.Config {
	if cfg.Thresholds == (sign.Thresholds{}) {
		cfg.Thresholds = sign.DefaultThresholds()
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = hold.DefaultCooldown
	}
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = transcript.DefaultHistoryCapacity
	}
	return cfg
}

// thresholdKeys maps each setting key to its field in sign.Thresholds.
func thresholdKeys(t *sign.Thresholds) map[string]*float64 {
	return map[string]*float64{
		store.SettingTouch:     &t.Touch,
		store.SettingCurveMin:  &t.CurveMin,
		store.SettingCurveMax:  &t.CurveMax,
		store.SettingSpread:    &t.Spread,
		store.SettingTogether:  &t.Together,
		store.SettingLReach:    &t.LReach,
		store.SettingLAngleMin: &t.LAngleMin,
		store.SettingLAngleMax: &t.LAngleMax,
	}
}

// loadSessionConfig overlays persisted settings on base.
func loadSessionConfig(repo *store.SettingsRepository, base session.Config) (session.Config, error) {
	cfg := base

	ms, err := repo.GetInt(store.SettingCooldownMs, base.Cooldown.Milliseconds())
	if err != nil {
		return base, fmt.Errorf("%s: %w", store.SettingCooldownMs, err)
	}
	cfg.Cooldown = time.Duration(ms) * time.Millisecond

	capacity, err := repo.GetInt(store.SettingHistoryCapacity, int64(base.HistoryCapacity))
	if err != nil {
		return base, fmt.Errorf("%s: %w", store.SettingHistoryCapacity, err)
	}
	cfg.HistoryCapacity = int(capacity)

	for key, field := range thresholdKeys(&cfg.Thresholds) {
		v, err := repo.GetFloat(key, *field)
		if err != nil {
			return base, fmt.Errorf("%s: %w", key, err)
		}
		*field = v
	}

	settings := Settings{
		CooldownMs:      cfg.Cooldown.Milliseconds(),
		HistoryCapacity: cfg.HistoryCapacity,
		Thresholds:      cfg.Thresholds,
	}
	if err := settings.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Settings returns the tunables currently in effect. History capacity is
// reported as configured at startup.
func (a *App) Settings() Settings {
	a.mu.RLock()
	capacity := a.config.Session.HistoryCapacity
	a.mu.RUnlock()

	return Settings{
		CooldownMs:      a.session.Cooldown().Milliseconds(),
		HistoryCapacity: capacity,
		Thresholds:      a.session.Classifier().Thresholds(),
	}
}

// UpdateSettings validates, persists and applies s. Cooldown and thresholds
// take effect immediately; history capacity applies to the next session.
func (a *App) UpdateSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if a.config.Store != nil {
		repo := a.config.Store.Settings()
		values := map[string]string{
			store.SettingCooldownMs:      strconv.FormatInt(s.CooldownMs, 10),
			store.SettingHistoryCapacity: strconv.Itoa(s.HistoryCapacity),
		}
		th := s.Thresholds
		for key, field := range thresholdKeys(&th) {
			values[key] = strconv.FormatFloat(*field, 'g', -1, 64)
		}
		for key, value := range values {
			if err := repo.Set(key, value); err != nil {
				return fmt.Errorf("save %s: %w", key, err)
			}
		}
	}

	if err := a.session.SetThresholds(s.Thresholds); err != nil {
		return err
	}
	a.session.SetCooldown(time.Duration(s.CooldownMs) * time.Millisecond)

	a.mu.Lock()
	a.config.Session.HistoryCapacity = s.HistoryCapacity
	a.mu.Unlock()
	return nil
}
