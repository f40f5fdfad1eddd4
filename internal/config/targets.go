package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Targets are the challenge pages to scrape and the XPath of the team counter on each.
type Targets struct {
	URLs  []string `json:"CHALLENGE_URLS" yaml:"CHALLENGE_URLS"`
	XPath string   `json:"XPATH" yaml:"XPATH"`
}

const DefaultXPath = "/html/body/main/section/div/div[3]/div/div/div/div[3]/div/p"

var defaultChallengeSlugs = []string{
	"animation-celebration-of-terra-data",
	"a-world-away-hunting-for-exoplanets-with-ai",
	"bloomwatch-an-earth-observation-application-for-global-flowering-phenology",
	"build-a-space-biology-knowledge-engine",
	"commercializing-low-earth-orbit-leo",
	"create-your-own-challenge",
	"data-pathways-to-healthy-cities-and-human-settlements",
	"deep-dive-immersive-data-stories-from-ocean-to-sky",
	"embiggen-your-eyes",
	"from-earthdata-to-action-cloud-computing-with-earth-observation-data-for-predicting-cleaner-safer-skies",
	"international-space-station-25th-anniversary-apps",
	"meteor-madness",
	"nasa-farm-navigators-using-nasa-data-exploration-in-agriculture",
	"sharks-from-space",
	"spacetrash-hack-revolutionizing-recycling-on-mars",
	"stellar-stories-space-weather-through-the-eyes-of-earthlings",
	"through-the-radar-looking-glass-revealing-earth-processes-with-sar",
	"will-it-rain-on-my-parade",
	"your-home-in-space-the-habitat-layout-creator",
}

// DefaultTargets returns the 2025 challenge list.
func DefaultTargets() Targets {
	urls := make([]string, 0, len(defaultChallengeSlugs))
	for _, slug := range defaultChallengeSlugs {
		urls = append(urls, "https://www.spaceappschallenge.org/2025/challenges/"+slug+"/?tab=teams")
	}
	return Targets{URLs: urls, XPath: DefaultXPath}
}

// LoadTargets reads a JSON or YAML targets file. A missing file falls back to DefaultTargets.
func LoadTargets(path string) (Targets, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultTargets(), nil
	}
	if err != nil {
		return Targets{}, fmt.Errorf("failed to read targets file %s: %w", path, err)
	}

	var t Targets
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &t)
	default:
		err = json.Unmarshal(data, &t)
	}
	if err != nil {
		return Targets{}, fmt.Errorf("failed to parse targets file %s: %w", path, err)
	}

	if err := t.Validate(); err != nil {
		return Targets{}, fmt.Errorf("targets file %s: %w", path, err)
	}
	return t, nil
}

// Validate checks the file as a whole. Individual URLs are not checked here: a
// bad one becomes a failed result for that page, not a failed run.
func (t Targets) Validate() error {
	if strings.TrimSpace(t.XPath) == "" {
		return errors.New("XPATH is required")
	}
	return nil
}
