package services

import (
	"context"
	"fmt"
	"sort"

	"g2p-curation/models"
	"g2p-curation/store"

	"go.uber.org/zap"
)

// DefaultMinedCap is the number of mined candidates kept per record.
const DefaultMinedCap = 100

// Pruner trims records with too many mined publication candidates down to the
// most recent ones.
type Pruner struct {
	Store  *store.Store
	Logger *zap.Logger
	Cap    int
}

// NewPruner creates a pruner; a non-positive cap falls back to DefaultMinedCap.
func NewPruner(s *store.Store, logger *zap.Logger, limit int) *Pruner {
	if limit <= 0 {
		limit = DefaultMinedCap
	}
	return &Pruner{Store: s, Logger: logger, Cap: limit}
}

// PruneResult summarises a sweep.
type PruneResult struct {
	RecordsPruned int
	Deleted       int
}

// Prune deletes mined candidates beyond the cap, newest year first and unknown
// years last. Only status "mined" is considered. An empty email attributes the
// deletions to no user.
func (p *Pruner) Prune(ctx context.Context, email string) (*PruneResult, error) {
	var user *models.User
	if email != "" {
		u, err := ActingUser(ctx, p.Store, email)
		if err != nil {
			return nil, err
		}
		user = u
	}

	counts, err := p.Store.MinedCountsByRecord(ctx, models.MinedStatusMined)
	if err != nil {
		return nil, fmt.Errorf("counting mined publications: %w", err)
	}

	result := &PruneResult{}
	for _, c := range counts {
		if c.PublicationCount <= p.Cap {
			continue
		}
		log := p.Logger.With(zap.String("stable_id", c.StableID), zap.Int("count", c.PublicationCount))

		var deleted int
		err := p.Store.Transaction(ctx, func(tx *store.Store) error {
			candidates, err := tx.MinedCandidatesForRecord(ctx, c.LGDID, models.MinedStatusMined)
			if err != nil {
				return err
			}
			sortByRecency(candidates)
			for i := p.Cap; i < len(candidates); i++ {
				if err := tx.DeleteMinedCandidate(ctx, user, &candidates[i]); err != nil {
					return err
				}
				deleted++
			}
			return nil
		})
		if err != nil {
			return result, fmt.Errorf("pruning %s: %w", c.StableID, err)
		}

		log.Info("Pruned mined publications", zap.Int("deleted", deleted))
		minedPrunedCounter.Add(float64(deleted))
		result.RecordsPruned++
		result.Deleted += deleted
	}
	return result, nil
}

// sortByRecency orders candidates by year descending with unknown years last;
// ties keep id order.
func sortByRecency(candidates []models.LGDMinedPublication) {
	sort.SliceStable(candidates, func(i, j int) bool {
		yi, yj := candidates[i].MinedPublication.Year, candidates[j].MinedPublication.Year
		switch {
		case yi == nil:
			return false
		case yj == nil:
			return true
		default:
			return *yi > *yj
		}
	})
}
