package store

import (
	"context"
	"fmt"

	"g2p-curation/models"
)

// LiveRecordsForGene returns the records of a gene that are not deleted, in id order.
func (s *Store) LiveRecordsForGene(ctx context.Context, geneSymbol string) ([]models.LocusGenotypeDisease, error) {
	var records []models.LocusGenotypeDisease
	err := s.db(ctx).
		Joins("JOIN locus ON locus.id = locus_genotype_disease.locus_id").
		Where("locus.name = ? AND locus_genotype_disease.is_deleted = ?", geneSymbol, false).
		Preload("Locus").
		Preload("Disease").
		Order("locus_genotype_disease.id").
		Find(&records).Error
	return records, err
}

// LiveRecordByStableID returns the live record with the given G2P ID.
func (s *Store) LiveRecordByStableID(ctx context.Context, stableID string) (*models.LocusGenotypeDisease, error) {
	var record models.LocusGenotypeDisease
	err := s.db(ctx).
		Where("stable_id = ? AND is_deleted = ?", stableID, false).
		Preload("Locus").
		Preload("Disease").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// RecordLinks returns every publication link of a record, including soft-deleted ones.
func (s *Store) RecordLinks(ctx context.Context, lgdID uint) ([]models.LGDPublication, error) {
	var links []models.LGDPublication
	err := s.db(ctx).
		Where("lgd_id = ?", lgdID).
		Preload("Publication").
		Order("id").
		Find(&links).Error
	return links, err
}

// CreateLink links a record to a publication.
func (s *Store) CreateLink(ctx context.Context, user *models.User, lgdID, publicationID uint) (*models.LGDPublication, error) {
	link := models.LGDPublication{LGDID: lgdID, PublicationID: publicationID}
	if err := s.db(ctx).Create(&link).Error; err != nil {
		return nil, fmt.Errorf("linking record %d to publication %d: %w", lgdID, publicationID, err)
	}
	if err := s.recordHistory(ctx, user, link.TableName(), link.ID, "create", ""); err != nil {
		return nil, err
	}
	return &link, nil
}

// RecordEvidence pairs a record with its number of live publication links.
type RecordEvidence struct {
	Record    models.LocusGenotypeDisease
	LiveLinks int
}

// LiveRecordsByConfidence returns live records at a confidence level with their
// live link counts, ordered by stable id.
func (s *Store) LiveRecordsByConfidence(ctx context.Context, confidence string) ([]RecordEvidence, error) {
	var records []models.LocusGenotypeDisease
	err := s.db(ctx).
		Where("confidence = ? AND is_deleted = ?", confidence, false).
		Preload("Locus").
		Preload("Disease").
		Order("stable_id").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	var counts []struct {
		LGDID     uint `gorm:"column:lgd_id"`
		LinkCount int  `gorm:"column:link_count"`
	}
	err = s.db(ctx).
		Model(&models.LGDPublication{}).
		Select("lgd_id, COUNT(*) AS link_count").
		Where("is_deleted = ?", false).
		Group("lgd_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	byRecord := make(map[uint]int, len(counts))
	for _, c := range counts {
		byRecord[c.LGDID] = c.LinkCount
	}

	out := make([]RecordEvidence, 0, len(records))
	for _, r := range records {
		out = append(out, RecordEvidence{Record: r, LiveLinks: byRecord[r.ID]})
	}
	return out, nil
}
