package gamedata

import (
	"fmt"
	"sort"

	"github.com/yungbote/paissadb/internal/types"
)

// PlotMeta is the static per-slot attribute pair every district defines
// for each of its plot numbers.
type PlotMeta struct {
	Size      types.PlotSize
	BasePrice int
}

type District struct {
	ID        int
	Name      string
	LandSetID int
	NumWards  int
	Plots     []PlotMeta // indexed by plot number
}

type World struct {
	ID   int
	Name string
}

// Catalog is the immutable identity -> static attribute lookup. It is
// built once at startup and read concurrently without locking.
type Catalog struct {
	worlds    map[int]World
	districts map[int]*District
}

func NewCatalog(worlds []World, districts []District) (*Catalog, error) {
	c := &Catalog{
		worlds:    make(map[int]World, len(worlds)),
		districts: make(map[int]*District, len(districts)),
	}
	for _, w := range worlds {
		if w.Name == "" {
			return nil, fmt.Errorf("world %d has no name", w.ID)
		}
		c.worlds[w.ID] = w
	}
	for i := range districts {
		d := districts[i]
		if d.NumWards <= 0 {
			return nil, fmt.Errorf("district %d (%s) has no wards", d.ID, d.Name)
		}
		if len(d.Plots) == 0 {
			return nil, fmt.Errorf("district %d (%s) has no plot table", d.ID, d.Name)
		}
		for n, p := range d.Plots {
			if p.BasePrice <= 0 {
				return nil, fmt.Errorf("district %d plot %d has no base price", d.ID, n)
			}
		}
		c.districts[d.ID] = &d
	}
	return c, nil
}

func (c *Catalog) WorldExists(worldID int) bool {
	_, ok := c.worlds[worldID]
	return ok
}

func (c *Catalog) WorldName(worldID int) (string, bool) {
	w, ok := c.worlds[worldID]
	return w.Name, ok
}

func (c *Catalog) Exists(id types.PlotIdentity) bool {
	if _, ok := c.worlds[id.WorldID]; !ok {
		return false
	}
	d, ok := c.districts[id.DistrictID]
	if !ok {
		return false
	}
	if id.WardNumber < 0 || id.WardNumber >= d.NumWards {
		return false
	}
	return id.PlotNumber >= 0 && id.PlotNumber < len(d.Plots)
}

func (c *Catalog) Plot(id types.PlotIdentity) (PlotMeta, bool) {
	if !c.Exists(id) {
		return PlotMeta{}, false
	}
	return c.districts[id.DistrictID].Plots[id.PlotNumber], true
}

func (c *Catalog) Size(id types.PlotIdentity) (types.PlotSize, bool) {
	m, ok := c.Plot(id)
	return m.Size, ok
}

func (c *Catalog) ListingPrice(id types.PlotIdentity) (int, bool) {
	m, ok := c.Plot(id)
	return m.BasePrice, ok
}

// Worlds returns every known world ordered by id.
func (c *Catalog) Worlds() []World {
	out := make([]World, 0, len(c.worlds))
	for _, w := range c.worlds {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Districts returns every housing district ordered by id. The same
// district set applies to every world.
func (c *Catalog) Districts() []District {
	out := make([]District, 0, len(c.districts))
	for _, d := range c.districts {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
