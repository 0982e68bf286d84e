// Package testdata provides recorded hand landmark fixtures for tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ayusman/signscribe/internal/detector"
)

//go:embed hands/*.json
var handsFS embed.FS

// Expected maps each fixture name to the sign it should classify as with
// the default thresholds.
var Expected = map[string]string{
	"a":     "A",
	"e":     "E",
	"hello": "HELLO",
	"w":     "W",
	"y":     "Y",
}

// LoadHand loads a hand fixture by name, without the .json extension.
func LoadHand(name string) (detector.HandLandmarks, error) {
	data, err := handsFS.ReadFile(path.Join("hands", name+".json"))
	if err != nil {
		return detector.HandLandmarks{}, fmt.Errorf("load hand %s: %w", name, err)
	}

	var raw struct {
		Points     []detector.Point3D `json:"points"`
		Handedness string             `json:"handedness"`
		Score      float64            `json:"score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return detector.HandLandmarks{}, fmt.Errorf("decode hand %s: %w", name, err)
	}

	hand, err := detector.FromSlice(raw.Points)
	if err != nil {
		return hand, fmt.Errorf("decode hand %s: %w", name, err)
	}
	hand.Handedness = raw.Handedness
	hand.Score = raw.Score
	return hand, nil
}

// Names lists the available fixtures in sorted order.
func Names() ([]string, error) {
	entries, err := handsFS.ReadDir("hands")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}
