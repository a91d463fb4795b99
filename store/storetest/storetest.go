// Package storetest opens throwaway sqlite stores and seeds curation fixtures.
package storetest

import (
	"context"
	"testing"
	"time"

	"g2p-curation/models"
	"g2p-curation/store"

	"github.com/stretchr/testify/require"
)

// New returns a migrated in-memory store that is closed when the test ends.
func New(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// User inserts an active curator account.
func User(t *testing.T, s *store.Store, username, email string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: email, IsActive: true}
	require.NoError(t, s.DB.Create(u).Error)
	return u
}

// Locus inserts a gene.
func Locus(t *testing.T, s *store.Store, symbol string) *models.Locus {
	t.Helper()
	l := &models.Locus{Name: symbol, Sequence: "1", Start: 100, End: 200, Strand: 1}
	require.NoError(t, s.DB.Create(l).Error)
	return l
}

// Disease inserts a disease with optional synonyms.
func Disease(t *testing.T, s *store.Store, name string, synonyms ...string) *models.Disease {
	t.Helper()
	d := &models.Disease{Name: name}
	for _, syn := range synonyms {
		d.Synonyms = append(d.Synonyms, models.DiseaseSynonym{Synonym: syn})
	}
	require.NoError(t, s.DB.Create(d).Error)
	return d
}

// Record describes a record to seed.
type Record struct {
	StableID   string
	Gene       *models.Locus
	Disease    *models.Disease
	Genotype   string
	Mechanism  string
	Confidence string
	Reviewed   *time.Time
	Deleted    bool
}

// LGD inserts a record.
func LGD(t *testing.T, s *store.Store, r Record) *models.LocusGenotypeDisease {
	t.Helper()
	confidence := r.Confidence
	if confidence == "" {
		confidence = models.ConfidenceDefinitive
	}
	rec := &models.LocusGenotypeDisease{
		StableID:   r.StableID,
		LocusID:    r.Gene.ID,
		DiseaseID:  r.Disease.ID,
		Genotype:   r.Genotype,
		Mechanism:  r.Mechanism,
		Confidence: confidence,
		IsReviewed: r.Reviewed != nil,
		DateReview: r.Reviewed,
	}
	require.NoError(t, s.DB.Create(rec).Error)
	if r.Deleted {
		require.NoError(t, s.DB.Model(rec).Update("is_deleted", true).Error)
		rec.IsDeleted = true
	}
	return rec
}

// Publication inserts a publication.
func Publication(t *testing.T, s *store.Store, pmid int, title string) *models.Publication {
	t.Helper()
	p := &models.Publication{PMID: pmid, Title: title}
	require.NoError(t, s.DB.Create(p).Error)
	return p
}

// Link links a record to a publication, soft-deleted when deleted is set.
func Link(t *testing.T, s *store.Store, rec *models.LocusGenotypeDisease, pub *models.Publication, deleted bool) *models.LGDPublication {
	t.Helper()
	link := &models.LGDPublication{LGDID: rec.ID, PublicationID: pub.ID}
	require.NoError(t, s.DB.Create(link).Error)
	if deleted {
		require.NoError(t, s.DB.Model(link).Update("is_deleted", true).Error)
		link.IsDeleted = true
	}
	return link
}

// Mined attaches a mined candidate publication to a record.
func Mined(t *testing.T, s *store.Store, rec *models.LocusGenotypeDisease, pmid int, year *int, status string) *models.LGDMinedPublication {
	t.Helper()
	var mp models.MinedPublication
	err := s.DB.Where("pmid = ?", pmid).FirstOrCreate(&mp, models.MinedPublication{PMID: pmid, Year: year}).Error
	require.NoError(t, err)
	candidate := &models.LGDMinedPublication{LGDID: rec.ID, MinedPublicationID: mp.ID, Status: status}
	require.NoError(t, s.DB.Create(candidate).Error)
	candidate.MinedPublication = mp
	return candidate
}

// Panel inserts a panel.
func Panel(t *testing.T, s *store.Store, name string, visible bool) *models.Panel {
	t.Helper()
	p := &models.Panel{Name: name, Description: name + " panel", IsVisible: visible}
	require.NoError(t, s.DB.Create(p).Error)
	return p
}

// OnPanel places a record on a panel.
func OnPanel(t *testing.T, s *store.Store, rec *models.LocusGenotypeDisease, panel *models.Panel) {
	t.Helper()
	require.NoError(t, s.DB.Create(&models.LGDPanel{LGDID: rec.ID, PanelID: panel.ID}).Error)
}

// Curator assigns a user to a panel.
func Curator(t *testing.T, s *store.Store, user *models.User, panel *models.Panel) {
	t.Helper()
	require.NoError(t, s.DB.Create(&models.UserPanel{UserID: user.ID, PanelID: panel.ID}).Error)
}

// Count returns the number of rows of model matching the optional condition.
func Count(t *testing.T, s *store.Store, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := s.DB.WithContext(context.Background()).Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
