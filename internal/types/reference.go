package types

// Static reference tables, seeded from the bundled game data at startup.
// They exist in the database so API reads can join names without going
// through the in-memory catalog.

type World struct {
	ID   int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"index;column:name" json:"name"`
}

func (World) TableName() string { return "worlds" }

type District struct {
	ID        int    `gorm:"primaryKey;autoIncrement:false" json:"id"` // territoryTypeId
	Name      string `gorm:"uniqueIndex;column:name" json:"name"`
	LandSetID int    `gorm:"uniqueIndex;column:land_set_id" json:"land_set_id"`
	NumWards  int    `gorm:"column:num_wards" json:"num_wards"`
}

func (District) TableName() string { return "districts" }

type PlotInfo struct {
	DistrictID int      `gorm:"primaryKey;autoIncrement:false;column:district_id" json:"district_id"`
	PlotNumber int      `gorm:"primaryKey;autoIncrement:false;column:plot_number" json:"plot_number"`
	Size       PlotSize `gorm:"column:house_size" json:"size"`
	BasePrice  int      `gorm:"column:house_base_price" json:"base_price"`
}

func (PlotInfo) TableName() string { return "plot_info" }
