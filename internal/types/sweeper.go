package types

import "time"

// Sweeper is a registered client agent. The ID is client-generated
// (the game character's content id), so it is not auto-incremented.
type Sweeper struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name       string    `gorm:"column:name" json:"name"`
	WorldID    int       `gorm:"index;column:world_id" json:"world_id"`
	SecretHash string    `gorm:"column:secret_hash" json:"-"`
	LastSeen   time.Time `gorm:"column:last_seen" json:"last_seen"`
}

func (Sweeper) TableName() string { return "sweepers" }
