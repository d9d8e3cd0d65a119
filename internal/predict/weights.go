package predict

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed weights.yaml
var embeddedWeights []byte

// DefaultSport is the weight table used when a sport has no entry of its own
const DefaultSport = "default"

// StrengthWeights combines the heuristic strength sub-scores
type StrengthWeights struct {
	WinRate     float64 `yaml:"win_rate"`
	PointDiff   float64 `yaml:"point_diff"`
	Consistency float64 `yaml:"consistency"`
	HomeAway    float64 `yaml:"home_away"`
	Form        float64 `yaml:"form"`
	Schedule    float64 `yaml:"schedule"`
}

// LinearWeights holds one weight per linear feature plus the bias
type LinearWeights struct {
	Rating      float64 `yaml:"rating"`
	Strength    float64 `yaml:"strength"`
	Form        float64 `yaml:"form"`
	Home        float64 `yaml:"home"`
	Rest        float64 `yaml:"rest"`
	PointDiff   float64 `yaml:"point_diff"`
	Consistency float64 `yaml:"consistency"`
	Schedule    float64 `yaml:"schedule"`
	Bias        float64 `yaml:"bias"`
}

// vector returns the feature weights in featureNames order
func (l LinearWeights) vector() [numFeatures]float64 {
	return [numFeatures]float64{
		l.Rating, l.Strength, l.Form, l.Home, l.Rest, l.PointDiff, l.Consistency, l.Schedule,
	}
}

// TotalAdjustments shift the predicted total score under certain contexts
type TotalAdjustments struct {
	Playoffs       float64 `yaml:"playoffs"`
	AdverseWeather float64 `yaml:"adverse_weather"`
}

// SportWeights is the full weight table for one sport
type SportWeights struct {
	Strength StrengthWeights  `yaml:"strength"`
	Linear   LinearWeights    `yaml:"linear"`
	Totals   TotalAdjustments `yaml:"totals"`
}

// Weights maps sports (and league aliases) to weight tables
type Weights struct {
	Version string                  `yaml:"version"`
	Aliases map[string]string       `yaml:"aliases"`
	Sports  map[string]SportWeights `yaml:"sports"`
}

// LoadWeights parses a YAML weight document
func LoadWeights(r io.Reader) (*Weights, error) {
	var w Weights
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("decode weights: %w", err)
	}
	w.normalizeKeys()
	if err := w.validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// LoadWeightsFile reads weights from path
func LoadWeightsFile(path string) (*Weights, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weights file: %w", err)
	}
	defer f.Close()
	return LoadWeights(f)
}

// DefaultWeights returns the built-in weight tables
func DefaultWeights() *Weights {
	w, err := LoadWeights(bytes.NewReader(embeddedWeights))
	if err != nil {
		panic(fmt.Sprintf("embedded weights are invalid: %v", err))
	}
	return w
}

func (w *Weights) validate() error {
	if w.Version == "" {
		return fmt.Errorf("weights: version is required")
	}
	if _, ok := w.Sports[DefaultSport]; !ok {
		return fmt.Errorf("weights: missing %q sport table", DefaultSport)
	}
	for name, sw := range w.Sports {
		s := sw.Strength
		if s.WinRate+s.PointDiff+s.Consistency+s.HomeAway+s.Form <= 0 {
			return fmt.Errorf("weights: sport %q has no strength weights", name)
		}
	}
	for alias, target := range w.Aliases {
		if _, ok := w.Sports[target]; !ok {
			return fmt.Errorf("weights: alias %q points to unknown sport %q", alias, target)
		}
	}
	return nil
}

func (w *Weights) normalizeKeys() {
	sports := make(map[string]SportWeights, len(w.Sports))
	for k, v := range w.Sports {
		sports[strings.ToLower(k)] = v
	}
	w.Sports = sports

	aliases := make(map[string]string, len(w.Aliases))
	for k, v := range w.Aliases {
		aliases[strings.ToLower(k)] = strings.ToLower(v)
	}
	w.Aliases = aliases
}

// Resolve maps a sport or league code to its weight table key
func (w *Weights) Resolve(sport string) string {
	key := strings.ToLower(strings.TrimSpace(sport))
	if _, ok := w.Sports[key]; ok {
		return key
	}
	if target, ok := w.Aliases[key]; ok {
		return target
	}
	return DefaultSport
}

// For returns the weight table for sport, falling back to the default table
func (w *Weights) For(sport string) SportWeights {
	return w.Sports[w.Resolve(sport)]
}
