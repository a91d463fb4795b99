package models

import "time"

// Confidence values of a record. Only the highest tier gets evidence checks.
const (
	ConfidenceDefinitive = "definitive"
	ConfidenceStrong     = "strong"
	ConfidenceModerate   = "moderate"
	ConfidenceLimited    = "limited"
	ConfidenceRefuted    = "refuted"
	ConfidenceDisputed   = "disputed"
)

// Mined publication candidate states. Discarded candidates are deleted.
const (
	MinedStatusMined   = "mined"
	MinedStatusCurated = "curated"
)

// LocusGenotypeDisease ("LGD record") asserts gene + genotype + mechanism -> disease.
// StableID is unique among rows that are not deleted.
type LocusGenotypeDisease struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StableID   string  `json:"stable_id" gorm:"column:stable_id;not null;uniqueIndex:idx_lgd_live_stable_id,where:is_deleted = false"`
	LocusID    uint    `json:"locus_id" gorm:"index"`
	Locus      Locus   `json:"locus"`
	DiseaseID  uint    `json:"disease_id" gorm:"index"`
	Disease    Disease `json:"disease"`
	Genotype   string  `json:"genotype" gorm:"index"`
	Mechanism  string  `json:"mechanism"`
	Confidence string  `json:"confidence" gorm:"index"`

	IsReviewed bool       `json:"is_reviewed" gorm:"default:false"`
	IsDeleted  bool       `json:"is_deleted" gorm:"default:false;index"`
	DateReview *time.Time `json:"date_review,omitempty"`
}

// TableName returns the explicit table name.
func (LocusGenotypeDisease) TableName() string {
	return "locus_genotype_disease"
}

// LGDPublication links a record to a publication. Soft-deleted rows are an
// integrity fault for the import pipelines.
type LGDPublication struct {
	ID            uint                 `json:"id" gorm:"primaryKey"`
	CreatedAt     time.Time            `json:"created_at"`
	LGDID         uint                 `json:"lgd_id" gorm:"column:lgd_id;index"`
	LGD           LocusGenotypeDisease `json:"-" gorm:"foreignKey:LGDID"`
	PublicationID uint                 `json:"publication_id" gorm:"index"`
	Publication   Publication          `json:"publication"`
	IsDeleted     bool                 `json:"is_deleted" gorm:"default:false"`
}

// TableName returns the explicit table name.
func (LGDPublication) TableName() string {
	return "lgd_publications"
}

// LGDMinedPublication is a candidate publication for a record.
type LGDMinedPublication struct {
	ID                 uint                 `json:"id" gorm:"primaryKey"`
	LGDID              uint                 `json:"lgd_id" gorm:"column:lgd_id;index"`
	LGD                LocusGenotypeDisease `json:"-" gorm:"foreignKey:LGDID"`
	MinedPublicationID uint                 `json:"mined_publication_id" gorm:"index"`
	MinedPublication   MinedPublication     `json:"mined_publication"`
	Status             string               `json:"status" gorm:"index;default:'mined'"`
}

// TableName returns the explicit table name.
func (LGDMinedPublication) TableName() string {
	return "lgd_mined_publications"
}

// All lists every model for auto-migration.
func All() []any {
	return []any{
		&User{}, &History{},
		&Panel{}, &UserPanel{},
		&Locus{}, &LocusSynonym{},
		&Disease{}, &DiseaseSynonym{}, &OntologyTerm{}, &DiseaseOntology{},
		&Publication{}, &DiseasePublication{}, &MinedPublication{},
		&LocusGenotypeDisease{}, &LGDPanel{}, &LGDPublication{}, &LGDMinedPublication{},
	}
}
