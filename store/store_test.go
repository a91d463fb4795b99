package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"g2p-curation/models"
	"g2p-curation/store"
	"g2p-curation/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLiveRecordsForGene(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	gene := storetest.Locus(t, s, "FBN1")
	other := storetest.Locus(t, s, "COL1A1")
	disease := storetest.Disease(t, s, "FBN1-related Marfan syndrome")

	live := storetest.LGD(t, s, storetest.Record{StableID: "G2P00001", Gene: gene, Disease: disease, Genotype: "monoallelic_autosomal"})
	storetest.LGD(t, s, storetest.Record{StableID: "G2P00002", Gene: gene, Disease: disease, Genotype: "biallelic_autosomal", Deleted: true})
	storetest.LGD(t, s, storetest.Record{StableID: "G2P00003", Gene: other, Disease: disease, Genotype: "monoallelic_autosomal"})

	records, err := s.LiveRecordsForGene(ctx, "FBN1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, live.ID, records[0].ID)
	assert.Equal(t, "FBN1", records[0].Locus.Name)
	assert.Equal(t, disease.Name, records[0].Disease.Name)

	records, err = s.LiveRecordsForGene(ctx, "MISSING")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLiveRecordByStableID(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	gene := storetest.Locus(t, s, "FBN1")
	disease := storetest.Disease(t, s, "Marfan syndrome")
	storetest.LGD(t, s, storetest.Record{StableID: "G2P00001", Gene: gene, Disease: disease, Deleted: true})

	_, err := s.LiveRecordByStableID(ctx, "G2P00001")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	// a deleted row does not block reuse of its stable id
	live := storetest.LGD(t, s, storetest.Record{StableID: "G2P00001", Gene: gene, Disease: disease})
	got, err := s.LiveRecordByStableID(ctx, "G2P00001")
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)
}

func TestRecordLinksIncludesDeleted(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	gene := storetest.Locus(t, s, "FBN1")
	disease := storetest.Disease(t, s, "Marfan syndrome")
	rec := storetest.LGD(t, s, storetest.Record{StableID: "G2P00001", Gene: gene, Disease: disease})
	storetest.Link(t, s, rec, storetest.Publication(t, s, 111, "a"), false)
	storetest.Link(t, s, rec, storetest.Publication(t, s, 222, "b"), true)

	links, err := s.RecordLinks(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, 111, links[0].Publication.PMID)
	assert.False(t, links[0].IsDeleted)
	assert.True(t, links[1].IsDeleted)
}

func TestCreateLinkRecordsHistory(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	user := storetest.User(t, s, "curator", "curator@example.org")
	gene := storetest.Locus(t, s, "FBN1")
	disease := storetest.Disease(t, s, "Marfan syndrome")
	rec := storetest.LGD(t, s, storetest.Record{StableID: "G2P00001", Gene: gene, Disease: disease})
	pub := storetest.Publication(t, s, 111, "a")

	link, err := s.CreateLink(ctx, user, rec.ID, pub.ID)
	require.NoError(t, err)

	history, err := s.HistoryFor(ctx, "lgd_publications")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, user.ID, history[0].UserID)
	assert.Equal(t, link.ID, history[0].RecordID)
	assert.Equal(t, "create", history[0].Action)
}

func TestTransactionRollsBack(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.CreatePublication(ctx, nil, &models.Publication{PMID: 42, Title: "x"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.PublicationByPMID(ctx, 42)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.Zero(t, storetest.Count(t, s, &models.History{}, ""))
}

func TestLiveRecordsByConfidence(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	gene := storetest.Locus(t, s, "FBN1")
	disease := storetest.Disease(t, s, "Marfan syndrome")
	one := storetest.LGD(t, s, storetest.Record{StableID: "G2P00002", Gene: gene, Disease: disease, Genotype: "a"})
	two := storetest.LGD(t, s, storetest.Record{StableID: "G2P00001", Gene: gene, Disease: disease, Genotype: "b"})
	storetest.LGD(t, s, storetest.Record{StableID: "G2P00003", Gene: gene, Disease: disease, Confidence: models.ConfidenceLimited})

	storetest.Link(t, s, one, storetest.Publication(t, s, 1, "a"), false)
	storetest.Link(t, s, one, storetest.Publication(t, s, 2, "b"), true)
	storetest.Link(t, s, two, storetest.Publication(t, s, 3, "c"), false)
	storetest.Link(t, s, two, storetest.Publication(t, s, 4, "d"), false)

	evidence, err := s.LiveRecordsByConfidence(ctx, models.ConfidenceDefinitive)
	require.NoError(t, err)
	require.Len(t, evidence, 2)
	assert.Equal(t, "G2P00001", evidence[0].Record.StableID)
	assert.Equal(t, 2, evidence[0].LiveLinks)
	assert.Equal(t, "G2P00002", evidence[1].Record.StableID)
	assert.Equal(t, 1, evidence[1].LiveLinks)
}

func TestMinedCandidates(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	user := storetest.User(t, s, "curator", "curator@example.org")
	gene := storetest.Locus(t, s, "FBN1")
	disease := storetest.Disease(t, s, "Marfan syndrome")
	rec := storetest.LGD(t, s, storetest.Record{StableID: "G2P00001", Gene: gene, Disease: disease})
	storetest.Mined(t, s, rec, 10, storetest.IntPtr(2020), models.MinedStatusMined)
	storetest.Mined(t, s, rec, 11, nil, models.MinedStatusMined)
	storetest.Mined(t, s, rec, 12, nil, models.MinedStatusCurated)

	counts, err := s.MinedCountsByRecord(ctx, models.MinedStatusMined)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, store.MinedCount{LGDID: rec.ID, StableID: "G2P00001", PublicationCount: 2}, counts[0])

	candidate, err := s.MinedCandidate(ctx, rec.ID, 10, models.MinedStatusMined)
	require.NoError(t, err)
	require.NoError(t, s.SetMinedStatus(ctx, user, candidate, models.MinedStatusCurated))
	assert.Equal(t, models.MinedStatusCurated, candidate.Status)

	_, err = s.MinedCandidate(ctx, rec.ID, 10, models.MinedStatusMined)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	remaining, err := s.MinedCandidatesForRecord(ctx, rec.ID, models.MinedStatusMined)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, 11, remaining[0].MinedPublication.PMID)

	require.NoError(t, s.DeleteMinedCandidate(ctx, user, &remaining[0]))
	assert.Zero(t, storetest.Count(t, s, &models.LGDMinedPublication{}, "status = ?", models.MinedStatusMined))

	history, err := s.HistoryFor(ctx, "lgd_mined_publications")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "status:mined->curated", history[0].Detail)
	assert.Equal(t, "pmid:11", history[1].Detail)
}

func TestCatalogQueries(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	curator := storetest.User(t, s, "curator", "curator@example.org")
	staff := storetest.User(t, s, "admin", "admin@example.org")
	require.NoError(t, s.DB.Model(staff).Update("is_staff", true).Error)

	dd := storetest.Panel(t, s, "DD", true)
	hidden := storetest.Panel(t, s, "Demo", false)
	storetest.Curator(t, s, curator, dd)
	storetest.Curator(t, s, staff, dd)
	storetest.Curator(t, s, curator, hidden)

	gene := storetest.Locus(t, s, "FBN1")
	disease := storetest.Disease(t, s, "Marfan syndrome")
	older := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := storetest.LGD(t, s, storetest.Record{StableID: "G2P00001", Gene: gene, Disease: disease, Genotype: "a", Reviewed: &older})
	b := storetest.LGD(t, s, storetest.Record{StableID: "G2P00002", Gene: gene, Disease: disease, Genotype: "b", Reviewed: &newer})
	storetest.OnPanel(t, s, a, dd)
	storetest.OnPanel(t, s, b, dd)
	storetest.OnPanel(t, s, b, hidden)

	panels, err := s.Panels(ctx, false)
	require.NoError(t, err)
	require.Len(t, panels, 1)
	assert.Equal(t, "DD", panels[0].Name)

	panels, err = s.Panels(ctx, true)
	require.NoError(t, err)
	assert.Len(t, panels, 2)

	_, err = s.PanelByName(ctx, "Demo", false)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	curators, err := s.PanelCurators(ctx, dd.ID)
	require.NoError(t, err)
	require.Len(t, curators, 1)
	assert.Equal(t, "curator", curators[0].Username)

	records, err := s.PanelRecords(ctx, dd.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "G2P00002", records[0].StableID)

	userPanels, err := s.UserPanels(ctx, curator.ID)
	require.NoError(t, err)
	assert.Len(t, userPanels, 2)

	recordPanels, err := s.RecordPanels(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, recordPanels, 2)
}
