package services

import (
	"context"
	"errors"
	"testing"

	"g2p-curation/models"
	"g2p-curation/store"
	"g2p-curation/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const curatorEmail = "curator@example.org"

type reconcilerFixture struct {
	store  *store.Store
	lit    *fakeLiterature
	rec    *Reconciler
	user   *models.User
	gene   *models.Locus
	record *models.LocusGenotypeDisease
}

// newReconcilerFixture seeds FBN1 with one definitive record linked to PMID 333.
func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()
	s := storetest.New(t)
	lit := newFakeLiterature()
	for _, pmid := range []int{111, 222, 444} {
		lit.add(pmid, "Title", 2020)
	}
	logger := zaptest.NewLogger(t)
	f := &reconcilerFixture{
		store: s,
		lit:   lit,
		rec:   NewReconciler(s, NewPublicationResolver(s, lit, logger), logger, "https://www.ebi.ac.uk/gene2phenotype/lgd/"),
		user:  storetest.User(t, s, "curator", curatorEmail),
		gene:  storetest.Locus(t, s, "FBN1"),
	}
	disease := storetest.Disease(t, s, "FBN1-related Marfan syndrome")
	f.record = storetest.LGD(t, s, storetest.Record{
		StableID:  "G2P00001",
		Gene:      f.gene,
		Disease:   disease,
		Genotype:  "monoallelic_autosomal",
		Mechanism: "loss of function",
	})
	storetest.Link(t, s, f.record, storetest.Publication(t, s, 333, "Existing"), false)
	return f
}

func legacyRow(id string, pmids ...string) LegacyRow {
	return LegacyRow{
		Line:               2,
		ID:                 id,
		GeneSymbol:         "FBN1",
		Genotype:           "monoallelic_autosomal",
		DiseaseName:        "Marfan syndrome",
		VariantConsequence: "loss of function",
		ReviewedPMIDs:      pmids,
		ExistingPMID:       "333",
	}
}

func TestImportLegacyAddsLinksAndIsIdempotent(t *testing.T) {
	f := newReconcilerFixture(t)
	ctx := context.Background()
	rows := []LegacyRow{legacyRow("1", "111", "222", "333")}

	res, err := f.rec.ImportLegacy(ctx, curatorEmail, rows)
	require.NoError(t, err)
	require.Len(t, res.Log.Entries, 1)
	assert.Equal(t, AuditEntry{RowID: "1", Outcome: OutcomeUpdated, Detail: "added:111; added:222; "}, res.Log.Entries[0])
	assert.Equal(t, 2, res.LinksAdded)
	assert.Equal(t, 2, res.PublicationsCreated)
	assert.Empty(t, res.Report.Rows)

	again, err := f.rec.ImportLegacy(ctx, curatorEmail, rows)
	require.NoError(t, err)
	assert.Equal(t, "No new pmids to add for G2P00001;", again.Log.Entries[0].Detail)
	assert.Equal(t, OutcomeNothingNew, again.Log.Entries[0].Outcome)
	assert.Zero(t, again.LinksAdded)
	assert.Equal(t, 2, f.lit.totalCalls())
	assert.EqualValues(t, 3, storetest.Count(t, f.store, &models.LGDPublication{}, "lgd_id = ?", f.record.ID))

	history, err := f.store.HistoryFor(ctx, "lgd_publications")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, f.user.ID, history[0].UserID)
}

func TestImportLegacyRowOutcomes(t *testing.T) {
	f := newReconcilerFixture(t)
	ctx := context.Background()

	notLinked := legacyRow("2", "111")
	notLinked.ExistingPMID = "999"

	updated := legacyRow("1")
	updated.G2PUpdated = "added publications 2023"

	unknownGene := legacyRow("4", "222")
	unknownGene.GeneSymbol = "NOPE"

	rows := []LegacyRow{updated, notLinked, legacyRow("3", "222"), unknownGene}
	res, err := f.rec.ImportLegacy(ctx, curatorEmail, rows)
	require.NoError(t, err)

	require.Len(t, res.Log.Entries, 4)
	assert.Equal(t, AuditEntry{RowID: "1", Outcome: OutcomeAlreadyUpdated, Detail: "Already updated"}, res.Log.Entries[0])
	assert.Equal(t, "G2P00001 is not associated with 999; added:111; ", res.Log.Entries[1].Detail)
	assert.Equal(t, AuditEntry{RowID: "3", Outcome: OutcomeCollision, Detail: "G2P00001 is already mapped to a record. Check FBN1"}, res.Log.Entries[2])
	assert.Equal(t, AuditEntry{RowID: "4", Outcome: OutcomeNoMatch, Detail: "No record for NOPE"}, res.Log.Entries[3])
	assert.Equal(t, 1, res.LinksAdded)
}

func TestImportLegacyNoPMIDs(t *testing.T) {
	f := newReconcilerFixture(t)
	row := legacyRow("1")
	row.ExistingPMID = "999"

	res, err := f.rec.ImportLegacy(context.Background(), curatorEmail, []LegacyRow{row})
	require.NoError(t, err)
	assert.Equal(t, AuditEntry{RowID: "1", Outcome: OutcomeNoPMIDs, Detail: "No pmids to add for G2P00001;"}, res.Log.Entries[0])
}

func TestImportLegacyDeletedLinkIsFatal(t *testing.T) {
	f := newReconcilerFixture(t)
	other := storetest.LGD(t, f.store, storetest.Record{
		StableID:  "G2P00002",
		Gene:      storetest.Locus(t, f.store, "COL1A1"),
		Disease:   storetest.Disease(t, f.store, "Osteogenesis imperfecta"),
		Genotype:  "monoallelic_autosomal",
		Mechanism: "dominant negative",
	})
	storetest.Link(t, f.store, other, storetest.Publication(t, f.store, 555, "Hidden"), true)

	second := legacyRow("2", "444")
	second.GeneSymbol = "COL1A1"
	second.VariantConsequence = "dominant negative"
	second.ExistingPMID = ""

	res, err := f.rec.ImportLegacy(context.Background(), curatorEmail, []LegacyRow{legacyRow("1", "111"), second})
	var integrity *DataIntegrityError
	require.True(t, errors.As(err, &integrity))
	assert.Equal(t, "G2P00002", integrity.StableID)
	assert.Equal(t, []int{555}, integrity.PMIDs)

	// rows before the fault are kept for the audit file
	require.Len(t, res.Log.Entries, 1)
	assert.Equal(t, "added:111; ", res.Log.Entries[0].Detail)
	assert.Zero(t, f.lit.calls[444])
}

func TestImportLegacyInvalidPMIDRollsBackRow(t *testing.T) {
	f := newReconcilerFixture(t)

	_, err := f.rec.ImportLegacy(context.Background(), curatorEmail, []LegacyRow{legacyRow("1", "111", "404")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPublicationID))

	assert.EqualValues(t, 1, storetest.Count(t, f.store, &models.LGDPublication{}, ""))
	assert.EqualValues(t, 0, storetest.Count(t, f.store, &models.Publication{}, "pmid = ?", 111))
}

func TestImportLegacyUnparseablePMIDIsFatal(t *testing.T) {
	f := newReconcilerFixture(t)

	_, err := f.rec.ImportLegacy(context.Background(), curatorEmail, []LegacyRow{legacyRow("1", "PMID:12")})
	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, "reviewed_correct_pmids", rowErr.Field)
}

func TestImportUnknownUser(t *testing.T) {
	f := newReconcilerFixture(t)

	_, err := f.rec.ImportLegacy(context.Background(), "nobody@example.org", []LegacyRow{legacyRow("1", "111")})
	assert.ErrorIs(t, err, ErrUnknownUser)
	_, err = f.rec.LoadPublications(context.Background(), "nobody@example.org", nil)
	assert.ErrorIs(t, err, ErrUnknownUser)
	assert.Zero(t, f.lit.totalCalls())
}

func currentRow(pmids ...string) CurrentRow {
	return CurrentRow{
		Line:        2,
		StableID:    "G2P00001",
		GeneSymbol:  "FBN1",
		Genotype:    "monoallelic_autosomal",
		DiseaseName: "FBN1-related Marfan syndrome",
		NewPMIDs:    pmids,
	}
}

func TestLoadPublicationsCuratesMinedCandidates(t *testing.T) {
	f := newReconcilerFixture(t)
	ctx := context.Background()
	storetest.Mined(t, f.store, f.record, 111, nil, models.MinedStatusMined)
	storetest.Mined(t, f.store, f.record, 777, nil, models.MinedStatusMined)

	res, err := f.rec.LoadPublications(ctx, curatorEmail, []CurrentRow{currentRow("111", "222")})
	require.NoError(t, err)
	assert.Equal(t, "added:111; added:222; ", res.Log.Entries[0].Detail)

	assert.EqualValues(t, 1, storetest.Count(t, f.store, &models.LGDMinedPublication{}, "status = ?", models.MinedStatusCurated))
	_, err = f.store.MinedCandidate(ctx, f.record.ID, 777, models.MinedStatusMined)
	assert.NoError(t, err)
}

func TestLoadPublicationsMismatchAndCollision(t *testing.T) {
	f := newReconcilerFixture(t)

	wrongGenotype := currentRow("111")
	wrongGenotype.Genotype = "biallelic_autosomal"

	res, err := f.rec.LoadPublications(context.Background(), curatorEmail,
		[]CurrentRow{wrongGenotype, currentRow(), currentRow("111")})
	require.NoError(t, err)
	require.Len(t, res.Log.Entries, 3)
	assert.Equal(t, AuditEntry{
		RowID:   "G2P00001",
		Outcome: OutcomeMismatch,
		Detail:  "data from file does not match data in G2P: monoallelic_autosomal; FBN1-related Marfan syndrome",
	}, res.Log.Entries[0])
	assert.Equal(t, "No pmids to add for G2P00001;", res.Log.Entries[1].Detail)
	assert.Equal(t, OutcomeCollision, res.Log.Entries[2].Outcome)
	assert.Zero(t, res.LinksAdded)
}

func TestLoadPublicationsUnknownRecordIsFatal(t *testing.T) {
	f := newReconcilerFixture(t)
	row := currentRow("111")
	row.StableID = "G2P99999"

	_, err := f.rec.LoadPublications(context.Background(), curatorEmail, []CurrentRow{currentRow(), row})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestUnderEvidencedReport(t *testing.T) {
	f := newReconcilerFixture(t)
	limited := storetest.LGD(t, f.store, storetest.Record{
		StableID:   "G2P00003",
		Gene:       f.gene,
		Disease:    storetest.Disease(t, f.store, "Other"),
		Genotype:   "biallelic_autosomal",
		Confidence: models.ConfidenceLimited,
	})
	storetest.Link(t, f.store, limited, storetest.Publication(t, f.store, 1, "x"), false)

	res, err := f.rec.LoadPublications(context.Background(), curatorEmail, nil)
	require.NoError(t, err)
	require.Len(t, res.Report.Rows, 1)
	assert.Equal(t, ReportRow{
		StableID:  "G2P00001",
		Gene:      "FBN1",
		Disease:   "FBN1-related Marfan syndrome",
		Genotype:  "monoallelic_autosomal",
		Mechanism: "loss of function",
		URL:       "https://www.ebi.ac.uk/gene2phenotype/lgd/G2P00001",
	}, res.Report.Rows[0])
}
