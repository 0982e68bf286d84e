package store

import (
	"database/sql"
	"errors"
	"strconv"
)

// Setting keys persisted in the settings table.
const (
	SettingCooldownMs      = "cooldown_ms"
	SettingHistoryCapacity = "history_capacity"
	SettingTouch           = "threshold_touch"
	SettingCurveMin        = "threshold_curve_min"
	SettingCurveMax        = "threshold_curve_max"
	SettingSpread          = "threshold_spread"
	SettingTogether        = "threshold_together"
	SettingLReach          = "threshold_l_reach"
	SettingLAngleMin       = "threshold_l_angle_min"
	SettingLAngleMax       = "threshold_l_angle_max"
)

// SettingsRepository provides key-value access to application settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value stored under key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// All returns every stored setting.
func (r *SettingsRepository) All() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}

	return settings, rows.Err()
}

// GetFloat returns the setting parsed as a float, or def when it is unset.
func (r *SettingsRepository) GetFloat(key string, def float64) (float64, error) {
	v, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, err
	}
	return f, nil
}

// GetInt returns the setting parsed as an integer, or def when it is unset.
func (r *SettingsRepository) GetInt(key string, def int64) (int64, error) {
	v, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def, err
	}
	return n, nil
}
