package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/atm-watch/internal/atm"
	"github.com/pfrederiksen/atm-watch/internal/geo"
)

// DefaultHTTPTimeout applies when http_timeout is absent from the file
const DefaultHTTPTimeout = 30 * time.Second

// Config is the validated contents of the JSON configuration file
type Config struct {
	ChatID       string
	Bounds       geo.Bounds
	Currencies   []string
	POIs         []atm.POI
	SleepTime    time.Duration
	ClipToBounds bool
	HTTPTimeout  time.Duration
}

// coordinate is a [lat, lng] pair as written in the config file
type coordinate [2]float64

func (c coordinate) point() geo.Point {
	return geo.Point{Lat: c[0], Lng: c[1]}
}

// chatID accepts both numeric and string chat identifiers
type chatID string

func (c *chatID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = chatID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("chat_id must be a string or integer: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("chat_id must be an integer: %s", n)
	}
	*c = chatID(n.String())
	return nil
}

type fileConfig struct {
	ChatID chatID `json:"chat_id"`
	Bounds struct {
		BottomLeft *coordinate `json:"bottom_left"`
		TopRight   *coordinate `json:"top_right"`
	} `json:"bounds"`
	Currencies []string `json:"currencies"`
	POIs       []struct {
		Name     string      `json:"name"`
		Location *coordinate `json:"location"`
	} `json:"pois"`
	SleepTime    *float64 `json:"sleep_time"`
	ClipToBounds bool     `json:"clip_to_bounds"`
	HTTPTimeout  *float64 `json:"http_timeout"`
}

// Load reads and validates the configuration file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates configuration JSON
func Parse(data []byte) (*Config, error) {
	var raw fileConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg := &Config{
		ChatID:       strings.TrimSpace(string(raw.ChatID)),
		ClipToBounds: raw.ClipToBounds,
		HTTPTimeout:  DefaultHTTPTimeout,
	}

	if cfg.ChatID == "" {
		return nil, fmt.Errorf("chat_id is required")
	}

	if raw.Bounds.BottomLeft == nil || raw.Bounds.TopRight == nil {
		return nil, fmt.Errorf("bounds.bottom_left and bounds.top_right are required")
	}
	cfg.Bounds = geo.Bounds{
		BottomLeft: raw.Bounds.BottomLeft.point(),
		TopRight:   raw.Bounds.TopRight.point(),
	}
	if err := cfg.Bounds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bounds: %w", err)
	}

	if len(raw.Currencies) == 0 {
		return nil, fmt.Errorf("at least one currency is required")
	}
	seen := make(map[string]bool)
	for _, c := range raw.Currencies {
		code := strings.ToUpper(strings.TrimSpace(c))
		if code == "" {
			return nil, fmt.Errorf("empty currency code")
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		cfg.Currencies = append(cfg.Currencies, code)
	}

	for i, p := range raw.POIs {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("pois[%d]: name is required", i)
		}
		if p.Location == nil {
			return nil, fmt.Errorf("pois[%d] %q: location is required", i, p.Name)
		}
		loc := p.Location.point()
		if loc.Lat < -90 || loc.Lat > 90 || loc.Lng < -180 || loc.Lng > 180 {
			return nil, fmt.Errorf("pois[%d] %q: location out of range: %v", i, p.Name, *p.Location)
		}
		cfg.POIs = append(cfg.POIs, atm.POI{Name: p.Name, Location: loc})
	}

	if raw.SleepTime == nil {
		return nil, fmt.Errorf("sleep_time is required")
	}
	sleep, err := seconds(*raw.SleepTime)
	if err != nil || sleep <= 0 {
		return nil, fmt.Errorf("sleep_time must be a positive number of seconds, got %v", *raw.SleepTime)
	}
	cfg.SleepTime = sleep

	if raw.HTTPTimeout != nil {
		timeout, err := seconds(*raw.HTTPTimeout)
		if err != nil || timeout < 0 {
			return nil, fmt.Errorf("http_timeout must be zero or a positive number of seconds, got %v", *raw.HTTPTimeout)
		}
		cfg.HTTPTimeout = timeout
	}

	return cfg, nil
}

// seconds converts a number of seconds into a duration
func seconds(s float64) (time.Duration, error) {
	if math.IsNaN(s) || math.IsInf(s, 0) || s > math.MaxInt64/float64(time.Second) {
		return 0, fmt.Errorf("invalid duration: %v", s)
	}
	return time.Duration(s * float64(time.Second)), nil
}
