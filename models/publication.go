package models

import "time"

// Publication is keyed by PMID. Title and authors are never changed once set.
type Publication struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	PMID    int     `json:"pmid" gorm:"column:pmid;uniqueIndex;not null"`
	Title   string  `json:"title" gorm:"type:text"`
	Authors string  `json:"authors,omitempty" gorm:"type:text"`
	Year    *int    `json:"year,omitempty"`
	DOI     *string `json:"doi,omitempty" gorm:"column:doi"`
}

// TableName returns the explicit table name.
func (Publication) TableName() string {
	return "publications"
}

// MinedPublication is a publication suggested by the upstream text-mining process.
type MinedPublication struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	PMID  int    `json:"pmid" gorm:"column:pmid;uniqueIndex;not null"`
	Title string `json:"title" gorm:"type:text"`
	Year  *int   `json:"year,omitempty"`
}

// TableName returns the explicit table name.
func (MinedPublication) TableName() string {
	return "mined_publications"
}
