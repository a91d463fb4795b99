package store

import (
	"context"

	"g2p-curation/models"
)

// Panels lists panels by name; hidden panels only when includeHidden is set.
func (s *Store) Panels(ctx context.Context, includeHidden bool) ([]models.Panel, error) {
	var panels []models.Panel
	q := s.db(ctx).Order("name")
	if !includeHidden {
		q = q.Where("is_visible = ?", true)
	}
	err := q.Find(&panels).Error
	return panels, err
}

// PanelByName returns a panel, honouring visibility.
func (s *Store) PanelByName(ctx context.Context, name string, includeHidden bool) (*models.Panel, error) {
	var panel models.Panel
	q := s.db(ctx).Where("name = ?", name)
	if !includeHidden {
		q = q.Where("is_visible = ?", true)
	}
	if err := q.First(&panel).Error; err != nil {
		return nil, err
	}
	return &panel, nil
}

// PanelCurators returns the active non-staff users assigned to a panel.
func (s *Store) PanelCurators(ctx context.Context, panelID uint) ([]models.User, error) {
	var users []models.User
	err := s.db(ctx).
		Joins("JOIN user_panels ON user_panels.user_id = users.id").
		Where("user_panels.panel_id = ? AND users.is_active = ? AND users.is_staff = ?", panelID, true, false).
		Order("users.username").
		Find(&users).Error
	return users, err
}

// PanelRecords returns the live records on a panel, most recently reviewed first.
func (s *Store) PanelRecords(ctx context.Context, panelID uint) ([]models.LocusGenotypeDisease, error) {
	var records []models.LocusGenotypeDisease
	err := s.db(ctx).
		Joins("JOIN lgd_panels ON lgd_panels.lgd_id = locus_genotype_disease.id").
		Where("lgd_panels.panel_id = ? AND lgd_panels.is_deleted = ? AND locus_genotype_disease.is_deleted = ?", panelID, false, false).
		Preload("Locus").
		Preload("Disease").
		Order("locus_genotype_disease.date_review DESC, locus_genotype_disease.id").
		Find(&records).Error
	return records, err
}

// Users returns all users ordered by username.
func (s *Store) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db(ctx).Order("username").Find(&users).Error
	return users, err
}

// UserPanels returns the panels a user is assigned to.
func (s *Store) UserPanels(ctx context.Context, userID uint) ([]models.Panel, error) {
	var panels []models.Panel
	err := s.db(ctx).
		Joins("JOIN user_panels ON user_panels.panel_id = panels.id").
		Where("user_panels.user_id = ?", userID).
		Order("panels.name").
		Find(&panels).Error
	return panels, err
}

// LocusByName returns a gene with its synonyms.
func (s *Store) LocusByName(ctx context.Context, name string) (*models.Locus, error) {
	var locus models.Locus
	if err := s.db(ctx).Where("name = ?", name).Preload("Synonyms").First(&locus).Error; err != nil {
		return nil, err
	}
	return &locus, nil
}

// LiveRecordsForLocus returns a gene's live records, most recently reviewed first.
func (s *Store) LiveRecordsForLocus(ctx context.Context, locusID uint) ([]models.LocusGenotypeDisease, error) {
	var records []models.LocusGenotypeDisease
	err := s.db(ctx).
		Where("locus_id = ? AND is_deleted = ?", locusID, false).
		Preload("Locus").
		Preload("Disease").
		Order("date_review DESC, id").
		Find(&records).Error
	return records, err
}

// DiseaseByName returns a disease with its synonyms.
func (s *Store) DiseaseByName(ctx context.Context, name string) (*models.Disease, error) {
	var disease models.Disease
	if err := s.db(ctx).Where("name = ?", name).Preload("Synonyms").First(&disease).Error; err != nil {
		return nil, err
	}
	return &disease, nil
}

// DiseaseOntologies returns the ontology mappings of a disease.
func (s *Store) DiseaseOntologies(ctx context.Context, diseaseID uint) ([]models.DiseaseOntology, error) {
	var rows []models.DiseaseOntology
	err := s.db(ctx).Where("disease_id = ?", diseaseID).Preload("OntologyTerm").Order("id").Find(&rows).Error
	return rows, err
}

// DiseasePublications returns the live publications of a disease.
func (s *Store) DiseasePublications(ctx context.Context, diseaseID uint) ([]models.DiseasePublication, error) {
	var rows []models.DiseasePublication
	err := s.db(ctx).
		Where("disease_id = ? AND is_deleted = ?", diseaseID, false).
		Preload("Publication").
		Order("id").
		Find(&rows).Error
	return rows, err
}

// LiveRecordsForDisease returns the live records of a disease.
func (s *Store) LiveRecordsForDisease(ctx context.Context, diseaseID uint) ([]models.LocusGenotypeDisease, error) {
	var records []models.LocusGenotypeDisease
	err := s.db(ctx).Where("disease_id = ? AND is_deleted = ?", diseaseID, false).Order("id").Find(&records).Error
	return records, err
}

// RecordPanels returns the panels a record is live on.
func (s *Store) RecordPanels(ctx context.Context, lgdID uint) ([]models.Panel, error) {
	var panels []models.Panel
	err := s.db(ctx).
		Joins("JOIN lgd_panels ON lgd_panels.panel_id = panels.id").
		Where("lgd_panels.lgd_id = ? AND lgd_panels.is_deleted = ?", lgdID, false).
		Order("panels.name").
		Find(&panels).Error
	return panels, err
}
