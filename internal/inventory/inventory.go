// Package inventory loads station inventories used for channel-id resolution.
package inventory

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/quakeline/nordic-etl/internal/domain"
)

type file struct {
	Channels []channel `toml:"channels"`
}

type channel struct {
	Network  string `toml:"network"`
	Station  string `toml:"station"`
	Location string `toml:"location"`
	Channel  string `toml:"channel"`
}

// Load reads a TOML station inventory. Each [[channels]] entry names one
// recording channel; station and channel codes are mandatory.
func Load(path string) ([]domain.WaveformID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	return Parse(data)
}

// Parse decodes inventory TOML.
func Parse(data []byte) ([]domain.WaveformID, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse inventory: %w", err)
	}
	out := make([]domain.WaveformID, 0, len(f.Channels))
	for i, c := range f.Channels {
		if c.Station == "" || c.Channel == "" {
			return nil, fmt.Errorf("inventory channel %d: station and channel are required", i)
		}
		out = append(out, domain.WaveformID{
			Network:  c.Network,
			Station:  c.Station,
			Location: c.Location,
			Channel:  c.Channel,
		})
	}
	return out, nil
}
