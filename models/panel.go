package models

// Panel groups records for a clinical area (e.g. "DD", "Eye").
type Panel struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	IsVisible   bool   `json:"is_visible"`
}

// TableName returns the explicit table name.
func (Panel) TableName() string {
	return "panels"
}

// UserPanel assigns a curator to a panel.
type UserPanel struct {
	ID      uint  `json:"id" gorm:"primaryKey"`
	UserID  uint  `json:"user_id" gorm:"index"`
	User    User  `json:"-"`
	PanelID uint  `json:"panel_id" gorm:"index"`
	Panel   Panel `json:"-"`
}

// TableName returns the explicit table name.
func (UserPanel) TableName() string {
	return "user_panels"
}

// LGDPanel places a record on a panel.
type LGDPanel struct {
	ID        uint                 `json:"id" gorm:"primaryKey"`
	LGDID     uint                 `json:"lgd_id" gorm:"column:lgd_id;index"`
	LGD       LocusGenotypeDisease `json:"-" gorm:"foreignKey:LGDID"`
	PanelID   uint                 `json:"panel_id" gorm:"index"`
	Panel     Panel                `json:"-"`
	IsDeleted bool                 `json:"is_deleted" gorm:"default:false"`
}

// TableName returns the explicit table name.
func (LGDPanel) TableName() string {
	return "lgd_panels"
}
