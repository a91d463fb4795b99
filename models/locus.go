package models

// Locus is a gene. The symbol is the identity key used when matching import rows.
type Locus struct {
	ID       uint           `json:"id" gorm:"primaryKey"`
	Name     string         `json:"gene_symbol" gorm:"uniqueIndex;not null"`
	Sequence string         `json:"sequence"`
	Start    int            `json:"start"`
	End      int            `json:"end"`
	Strand   int            `json:"strand"`
	Synonyms []LocusSynonym `json:"-" gorm:"foreignKey:LocusID"`
}

// TableName returns the explicit table name.
func (Locus) TableName() string {
	return "locus"
}

// LocusSynonym is an alternative gene symbol.
type LocusSynonym struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	LocusID uint   `json:"locus_id" gorm:"index"`
	Value   string `json:"value" gorm:"index;not null"`
}

// TableName returns the explicit table name.
func (LocusSynonym) TableName() string {
	return "locus_synonyms"
}
