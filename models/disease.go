package models

// Disease is a named condition. No two diseases may share a canonical name or synonym.
type Disease struct {
	ID       uint             `json:"id" gorm:"primaryKey"`
	Name     string           `json:"name" gorm:"uniqueIndex;not null"`
	MIM      string           `json:"mim,omitempty" gorm:"column:mim"`
	Synonyms []DiseaseSynonym `json:"-" gorm:"foreignKey:DiseaseID"`
}

// TableName returns the explicit table name.
func (Disease) TableName() string {
	return "disease"
}

// DiseaseSynonym is an alternative disease name.
type DiseaseSynonym struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	DiseaseID uint   `json:"disease_id" gorm:"index"`
	Synonym   string `json:"synonym" gorm:"not null"`
}

// TableName returns the explicit table name.
func (DiseaseSynonym) TableName() string {
	return "disease_synonyms"
}

// OntologyTerm caches a validated ontology accession (e.g. MONDO:0008678).
type OntologyTerm struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Accession   string `json:"accession" gorm:"uniqueIndex;not null"`
	Term        string `json:"term"`
	Description string `json:"description,omitempty" gorm:"type:text"`
	Source      string `json:"source"`
}

// TableName returns the explicit table name.
func (OntologyTerm) TableName() string {
	return "ontology_terms"
}

// DiseaseOntology maps a disease to an ontology term.
type DiseaseOntology struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	DiseaseID      uint         `json:"disease_id" gorm:"index"`
	OntologyTermID uint         `json:"ontology_term_id" gorm:"index"`
	OntologyTerm   OntologyTerm `json:"ontology_term"`
	MappedBy       string       `json:"mapped_by"`
}

// TableName returns the explicit table name.
func (DiseaseOntology) TableName() string {
	return "disease_ontology"
}

// DiseasePublication links a disease to a supporting publication.
type DiseasePublication struct {
	ID            uint        `json:"id" gorm:"primaryKey"`
	DiseaseID     uint        `json:"disease_id" gorm:"index"`
	PublicationID uint        `json:"publication_id" gorm:"index"`
	Publication   Publication `json:"publication"`
	Families      *int        `json:"families,omitempty"`
	Consanguinity string      `json:"consanguinity,omitempty"`
	Ethnicity     string      `json:"ethnicity,omitempty"`
	IsDeleted     bool        `json:"is_deleted" gorm:"default:false"`
}

// TableName returns the explicit table name.
func (DiseasePublication) TableName() string {
	return "disease_publications"
}
