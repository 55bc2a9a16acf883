package model

import (
	"time"
)

// ParishModel is the GORM-specific struct for the 'parishes' table.
type ParishModel struct {
	ID        int     `gorm:"primary_key"`
	Name      string  `gorm:"type:varchar(255);not null"`
	Address   string  `gorm:"type:text"`
	City      string  `gorm:"type:varchar(100);index"`
	State     string  `gorm:"type:varchar(50)"`
	Zip       string  `gorm:"type:varchar(20)"`
	Country   string  `gorm:"type:varchar(100)"`
	Phone     string  `gorm:"type:varchar(50)"`
	URL       string  `gorm:"type:text"`
	Latitude  float64 `gorm:"type:decimal(10,8);not null;index:idx_parishes_on_coords"`
	Longitude float64 `gorm:"type:decimal(11,8);not null;index:idx_parishes_on_coords"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Times []WorshipTimeModel `gorm:"foreignKey:ParishID"`
}

// TableName explicitly sets the table name for GORM.
func (ParishModel) TableName() string {
	return "parishes"
}

// WorshipTimeModel is the GORM-specific struct for the 'worship_times' table.
type WorshipTimeModel struct {
	ID       int    `gorm:"primary_key"`
	ParishID int    `gorm:"not null;index:idx_worship_times_on_parish"`
	Day      string `gorm:"type:varchar(20);not null"`
	Time     string `gorm:"type:varchar(20);not null"`
	Type     string `gorm:"type:varchar(50);not null"`
	Language string `gorm:"type:varchar(50)"`
	Note     string `gorm:"type:text"`
}

// TableName explicitly sets the table name for GORM.
func (WorshipTimeModel) TableName() string {
	return "worship_times"
}
