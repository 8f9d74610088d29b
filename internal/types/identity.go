package types

import "fmt"

// PlotIdentity addresses a single housing slot. All components are
// zero-indexed except world and district ids, which come straight from
// the game's data sheets.
type PlotIdentity struct {
	WorldID    int `json:"world_id"`
	DistrictID int `json:"district_id"`
	WardNumber int `json:"ward_number"`
	PlotNumber int `json:"plot_number"`
}

func (id PlotIdentity) String() string {
	return fmt.Sprintf("w%d/d%d/ward%d/plot%d", id.WorldID, id.DistrictID, id.WardNumber, id.PlotNumber)
}

type PlotSize int

const (
	SizeSmall PlotSize = iota
	SizeMedium
	SizeLarge
)

func (s PlotSize) String() string {
	switch s {
	case SizeSmall:
		return "small"
	case SizeMedium:
		return "medium"
	case SizeLarge:
		return "large"
	default:
		return fmt.Sprintf("PlotSize(%d)", int(s))
	}
}

func ParsePlotSize(s string) (PlotSize, error) {
	switch s {
	case "small":
		return SizeSmall, nil
	case "medium":
		return SizeMedium, nil
	case "large":
		return SizeLarge, nil
	default:
		return 0, fmt.Errorf("unknown plot size %q", s)
	}
}
