package gamedata

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/paissadb/internal/types"
)

type worldsFile struct {
	Worlds []struct {
		ID   int    `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"worlds"`
}

type districtsFile struct {
	Districts []struct {
		ID        int    `yaml:"id"`
		Name      string `yaml:"name"`
		LandSetID int    `yaml:"land_set_id"`
		NumWards  int    `yaml:"num_wards"`
		NumPlots  int    `yaml:"num_plots"`
		Plots     []struct {
			Range     string `yaml:"range"` // "0-19" or a single "42"
			Size      string `yaml:"size"`
			BasePrice int    `yaml:"base_price"`
		} `yaml:"plots"`
	} `yaml:"districts"`
}

// LoadDir reads worlds.yaml and districts.yaml from dir and builds the
// catalog. Any gap or malformed entry is fatal: the process must not
// start with a partial reference table.
func LoadDir(dir string) (*Catalog, error) {
	worlds, err := loadWorlds(filepath.Join(dir, "worlds.yaml"))
	if err != nil {
		return nil, err
	}
	districts, err := loadDistricts(filepath.Join(dir, "districts.yaml"))
	if err != nil {
		return nil, err
	}
	return NewCatalog(worlds, districts)
}

func loadWorlds(path string) ([]World, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read worlds: %w", err)
	}
	var f worldsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse worlds: %w", err)
	}
	if len(f.Worlds) == 0 {
		return nil, fmt.Errorf("worlds file %s is empty", path)
	}
	out := make([]World, 0, len(f.Worlds))
	for _, w := range f.Worlds {
		out = append(out, World{ID: w.ID, Name: w.Name})
	}
	return out, nil
}

func loadDistricts(path string) ([]District, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read districts: %w", err)
	}
	var f districtsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse districts: %w", err)
	}
	if len(f.Districts) == 0 {
		return nil, fmt.Errorf("districts file %s is empty", path)
	}
	out := make([]District, 0, len(f.Districts))
	for _, d := range f.Districts {
		if d.NumPlots <= 0 {
			return nil, fmt.Errorf("district %d (%s): num_plots must be positive", d.ID, d.Name)
		}
		plots := make([]PlotMeta, d.NumPlots)
		seen := make([]bool, d.NumPlots)
		for _, entry := range d.Plots {
			lo, hi, err := parseRange(entry.Range)
			if err != nil {
				return nil, fmt.Errorf("district %d (%s): %w", d.ID, d.Name, err)
			}
			size, err := types.ParsePlotSize(entry.Size)
			if err != nil {
				return nil, fmt.Errorf("district %d (%s) plots %s: %w", d.ID, d.Name, entry.Range, err)
			}
			for n := lo; n <= hi; n++ {
				if n < 0 || n >= d.NumPlots {
					return nil, fmt.Errorf("district %d (%s): plot %d out of range", d.ID, d.Name, n)
				}
				if seen[n] {
					return nil, fmt.Errorf("district %d (%s): plot %d defined twice", d.ID, d.Name, n)
				}
				seen[n] = true
				plots[n] = PlotMeta{Size: size, BasePrice: entry.BasePrice}
			}
		}
		for n, ok := range seen {
			if !ok {
				return nil, fmt.Errorf("district %d (%s): plot %d has no size/price entry", d.ID, d.Name, n)
			}
		}
		out = append(out, District{
			ID:        d.ID,
			Name:      d.Name,
			LandSetID: d.LandSetID,
			NumWards:  d.NumWards,
			Plots:     plots,
		})
	}
	return out, nil
}

func parseRange(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("empty plot range")
	}
	if lo, hi, ok := strings.Cut(s, "-"); ok {
		l, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return 0, 0, fmt.Errorf("bad plot range %q", s)
		}
		h, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil || h < l {
			return 0, 0, fmt.Errorf("bad plot range %q", s)
		}
		return l, h, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, fmt.Errorf("bad plot range %q", s)
	}
	return n, n, nil
}
