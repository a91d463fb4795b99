package store

import (
	"context"
	"fmt"

	"g2p-curation/models"
)

// PublicationByPMID returns the stored publication for a PMID.
func (s *Store) PublicationByPMID(ctx context.Context, pmid int) (*models.Publication, error) {
	var pub models.Publication
	if err := s.db(ctx).Where("pmid = ?", pmid).First(&pub).Error; err != nil {
		return nil, err
	}
	return &pub, nil
}

// CreatePublication inserts a new publication attributed to user.
func (s *Store) CreatePublication(ctx context.Context, user *models.User, pub *models.Publication) error {
	if err := s.db(ctx).Create(pub).Error; err != nil {
		return fmt.Errorf("creating publication %d: %w", pub.PMID, err)
	}
	return s.recordHistory(ctx, user, pub.TableName(), pub.ID, "create", fmt.Sprintf("pmid:%d", pub.PMID))
}

// MinedCandidate returns the candidate of a record for a PMID in the given status.
func (s *Store) MinedCandidate(ctx context.Context, lgdID uint, pmid int, status string) (*models.LGDMinedPublication, error) {
	var candidate models.LGDMinedPublication
	err := s.db(ctx).
		Joins("JOIN mined_publications ON mined_publications.id = lgd_mined_publications.mined_publication_id").
		Where("lgd_mined_publications.lgd_id = ? AND mined_publications.pmid = ? AND lgd_mined_publications.status = ?", lgdID, pmid, status).
		Preload("MinedPublication").
		First(&candidate).Error
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

// SetMinedStatus moves a candidate to a new status.
func (s *Store) SetMinedStatus(ctx context.Context, user *models.User, candidate *models.LGDMinedPublication, status string) error {
	from := candidate.Status
	if err := s.db(ctx).Model(candidate).Update("status", status).Error; err != nil {
		return fmt.Errorf("updating mined publication %d: %w", candidate.ID, err)
	}
	candidate.Status = status
	return s.recordHistory(ctx, user, candidate.TableName(), candidate.ID, "update",
		fmt.Sprintf("status:%s->%s", from, status))
}

// MinedCount is the number of distinct candidates of one record in a status.
type MinedCount struct {
	LGDID            uint   `gorm:"column:lgd_id"`
	StableID         string `gorm:"column:stable_id"`
	PublicationCount int    `gorm:"column:publication_count"`
}

// MinedCountsByRecord counts distinct candidate publications per record for a status.
func (s *Store) MinedCountsByRecord(ctx context.Context, status string) ([]MinedCount, error) {
	var counts []MinedCount
	err := s.db(ctx).
		Table("lgd_mined_publications").
		Select("lgd_mined_publications.lgd_id AS lgd_id, locus_genotype_disease.stable_id AS stable_id, COUNT(DISTINCT lgd_mined_publications.mined_publication_id) AS publication_count").
		Joins("JOIN locus_genotype_disease ON locus_genotype_disease.id = lgd_mined_publications.lgd_id").
		Where("lgd_mined_publications.status = ?", status).
		Group("lgd_mined_publications.lgd_id, locus_genotype_disease.stable_id").
		Order("locus_genotype_disease.stable_id").
		Scan(&counts).Error
	return counts, err
}

// MinedCandidatesForRecord lists a record's candidates in a status, in id order.
func (s *Store) MinedCandidatesForRecord(ctx context.Context, lgdID uint, status string) ([]models.LGDMinedPublication, error) {
	var candidates []models.LGDMinedPublication
	err := s.db(ctx).
		Where("lgd_id = ? AND status = ?", lgdID, status).
		Preload("MinedPublication").
		Order("id").
		Find(&candidates).Error
	return candidates, err
}

// DeleteMinedCandidate hard-deletes a candidate.
func (s *Store) DeleteMinedCandidate(ctx context.Context, user *models.User, candidate *models.LGDMinedPublication) error {
	if err := s.db(ctx).Delete(&models.LGDMinedPublication{}, candidate.ID).Error; err != nil {
		return fmt.Errorf("deleting mined publication %d: %w", candidate.ID, err)
	}
	return s.recordHistory(ctx, user, candidate.TableName(), candidate.ID, "delete",
		fmt.Sprintf("pmid:%d", candidate.MinedPublication.PMID))
}
