package store

import (
	"context"
	"fmt"

	"g2p-curation/models"
)

// AllDiseases returns every disease with its synonyms.
func (s *Store) AllDiseases(ctx context.Context) ([]models.Disease, error) {
	var diseases []models.Disease
	err := s.db(ctx).Preload("Synonyms").Order("id").Find(&diseases).Error
	return diseases, err
}

// CreateDisease inserts a disease attributed to user.
func (s *Store) CreateDisease(ctx context.Context, user *models.User, disease *models.Disease) error {
	if err := s.db(ctx).Create(disease).Error; err != nil {
		return fmt.Errorf("creating disease %q: %w", disease.Name, err)
	}
	return s.recordHistory(ctx, user, disease.TableName(), disease.ID, "create", disease.Name)
}

// OntologyTermByAccession returns a cached ontology term.
func (s *Store) OntologyTermByAccession(ctx context.Context, accession string) (*models.OntologyTerm, error) {
	var term models.OntologyTerm
	if err := s.db(ctx).Where("accession = ?", accession).First(&term).Error; err != nil {
		return nil, err
	}
	return &term, nil
}

// CreateOntologyTerm inserts a validated ontology term.
func (s *Store) CreateOntologyTerm(ctx context.Context, user *models.User, term *models.OntologyTerm) error {
	if err := s.db(ctx).Create(term).Error; err != nil {
		return fmt.Errorf("creating ontology term %s: %w", term.Accession, err)
	}
	return s.recordHistory(ctx, user, term.TableName(), term.ID, "create", term.Accession)
}

// CreateDiseaseOntology maps a disease to an ontology term.
func (s *Store) CreateDiseaseOntology(ctx context.Context, user *models.User, mapping *models.DiseaseOntology) error {
	if err := s.db(ctx).Create(mapping).Error; err != nil {
		return fmt.Errorf("mapping disease %d to ontology term %d: %w", mapping.DiseaseID, mapping.OntologyTermID, err)
	}
	return s.recordHistory(ctx, user, mapping.TableName(), mapping.ID, "create", "")
}

// DiseasePublication returns the link between a disease and a publication.
func (s *Store) DiseasePublication(ctx context.Context, diseaseID, publicationID uint) (*models.DiseasePublication, error) {
	var link models.DiseasePublication
	err := s.db(ctx).
		Where("disease_id = ? AND publication_id = ?", diseaseID, publicationID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// CreateDiseasePublication links a disease to a publication.
func (s *Store) CreateDiseasePublication(ctx context.Context, user *models.User, link *models.DiseasePublication) error {
	if err := s.db(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("linking disease %d to publication %d: %w", link.DiseaseID, link.PublicationID, err)
	}
	return s.recordHistory(ctx, user, link.TableName(), link.ID, "create", "")
}
