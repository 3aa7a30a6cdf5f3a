// Package catalog holds the table of analyzers sctool understands.
package catalog

import (
	"fmt"
	"strings"
)

// Analyzer categories used by the default table.
const (
	CategoryCore     = "Core"
	CategoryGameType = "Game Type"
	CategoryPlayer   = "Player"
)

// Descriptor describes a single analyzer.
type Descriptor struct {
	Key         string `toml:"key"`
	Label       string `toml:"label"`
	Category    string `toml:"category"`
	Description string `toml:"description"`
}

// Catalog is an ordered, immutable set of analyzer descriptors.
type Catalog struct {
	descs []Descriptor
	index map[string]int
}

// Defaults returns the analyzers shipped with sctool.
func Defaults() []Descriptor {
	return []Descriptor{
		{Key: "date", Label: "Game Date", Category: CategoryCore, Description: "Date when the game was played"},
		{Key: "duration-minutes", Label: "Duration (minutes)", Category: CategoryCore, Description: "Game length in minutes"},
		{Key: "map-name", Label: "Map Name", Category: CategoryCore, Description: "Name of the map played"},
		{Key: "replay-name", Label: "Replay Filename", Category: CategoryCore, Description: "Original replay file name"},
		{Key: "replay-path", Label: "Replay Path", Category: CategoryCore, Description: "Full path to replay file"},
		{Key: "is-1v1", Label: "1v1 Match", Category: CategoryGameType, Description: "True if game was 1v1"},
		{Key: "is-2v2", Label: "2v2 Match", Category: CategoryGameType, Description: "True if game was 2v2"},
		{Key: "matchup", Label: "Race Matchup", Category: CategoryGameType, Description: "Race combination (e.g., TvZ)"},
		{Key: "my-race", Label: "Your Race", Category: CategoryPlayer, Description: "Your race (requires -me flag)"},
		{Key: "my-apm", Label: "Your APM", Category: CategoryPlayer, Description: "Your actions per minute"},
		{Key: "my-win", Label: "Win/Loss", Category: CategoryPlayer, Description: "Whether you won the game"},
		{Key: "my-game", Label: "Your Games", Category: CategoryPlayer, Description: "Games where you participated"},
		{Key: "my-matchup", Label: "Your Matchup", Category: CategoryPlayer, Description: "Matchup from your perspective"},
	}
}

// New builds a catalog from descs. Keys must be non-empty and unique.
func New(descs []Descriptor) (*Catalog, error) {
	if len(descs) == 0 {
		return nil, fmt.Errorf("analyzer catalog is empty")
	}
	c := &Catalog{
		descs: make([]Descriptor, 0, len(descs)),
		index: make(map[string]int, len(descs)),
	}
	for _, d := range descs {
		d.Key = strings.TrimSpace(d.Key)
		if d.Key == "" {
			return nil, fmt.Errorf("analyzer key must not be empty")
		}
		if _, ok := c.index[d.Key]; ok {
			return nil, fmt.Errorf("duplicate analyzer key %q", d.Key)
		}
		if d.Label == "" {
			d.Label = d.Key
		}
		if d.Category == "" {
			d.Category = CategoryCore
		}
		c.index[d.Key] = len(c.descs)
		c.descs = append(c.descs, d)
	}
	return c, nil
}

// Default returns a catalog built from Defaults.
func Default() *Catalog {
	c, err := New(Defaults())
	if err != nil {
		panic(err)
	}
	return c
}

// All returns a copy of every descriptor in table order.
func (c *Catalog) All() []Descriptor {
	return append([]Descriptor(nil), c.descs...)
}

// Lookup returns the descriptor for key.
func (c *Catalog) Lookup(key string) (Descriptor, bool) {
	i, ok := c.index[key]
	if !ok {
		return Descriptor{}, false
	}
	return c.descs[i], true
}

// Categories returns category names in order of first appearance.
func (c *Catalog) Categories() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, d := range c.descs {
		if _, ok := seen[d.Category]; ok {
			continue
		}
		seen[d.Category] = struct{}{}
		out = append(out, d.Category)
	}
	return out
}

// ByCategory groups descriptors by category, keeping table order inside each group.
func (c *Catalog) ByCategory() map[string][]Descriptor {
	out := make(map[string][]Descriptor)
	for _, d := range c.descs {
		out[d.Category] = append(out[d.Category], d)
	}
	return out
}

// Validate returns an error naming the first key not present in the catalog.
func (c *Catalog) Validate(keys []string) error {
	for _, k := range keys {
		if _, ok := c.index[k]; !ok {
			return fmt.Errorf("unknown analyzer %q", k)
		}
	}
	return nil
}
