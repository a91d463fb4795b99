package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"g2p-curation/models"
	"g2p-curation/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// alreadyUpdatedMarker in the legacy g2p_updated column marks rows imported earlier.
const alreadyUpdatedMarker = "added publications"

// ImportResult is the outcome of an import run. Log holds every row processed
// before the run ended, including runs that abort.
type ImportResult struct {
	Log                 *AuditLog
	Report              *UnderEvidencedReport
	LinksAdded          int
	PublicationsCreated int
}

// Reconciler attaches spreadsheet PMIDs to existing records.
type Reconciler struct {
	Store         *store.Store
	Resolver      *PublicationResolver
	Logger        *zap.Logger
	RecordURLBase string
}

// NewReconciler creates a reconciler.
func NewReconciler(s *store.Store, resolver *PublicationResolver, logger *zap.Logger, recordURLBase string) *Reconciler {
	return &Reconciler{Store: s, Resolver: resolver, Logger: logger, RecordURLBase: recordURLBase}
}

// ImportLegacy matches legacy rows by gene, genotype, mechanism and disease name
// and links their reviewed PMIDs.
func (r *Reconciler) ImportLegacy(ctx context.Context, email string, rows []LegacyRow) (*ImportResult, error) {
	log := r.Logger.With(zap.String("variant", string(VariantLegacy)))
	result := &ImportResult{Log: &AuditLog{}}

	user, err := ActingUser(ctx, r.Store, email)
	if err != nil {
		return result, err
	}

	rc := NewRunContext()
	for _, row := range rows {
		if strings.Contains(row.G2PUpdated, alreadyUpdatedMarker) {
			r.record(result, VariantLegacy, row.ID, OutcomeAlreadyUpdated, "Already updated")
			continue
		}

		candidates, err := r.Store.LiveRecordsForGene(ctx, row.GeneSymbol)
		if err != nil {
			return result, fmt.Errorf("line %d: fetching records for %s: %w", row.Line, row.GeneSymbol, err)
		}
		match := rc.Match(MatchInput{
			GeneSymbol:  row.GeneSymbol,
			Genotype:    row.Genotype,
			DiseaseName: row.DiseaseName,
			Mechanism:   row.VariantConsequence,
		}, candidates, row.ID)
		if !match.Matched() {
			log.Warn(match.Reason, zap.String("row", row.ID))
			r.record(result, VariantLegacy, row.ID, match.Outcome, match.Reason)
			continue
		}

		var existing *int
		if row.ExistingPMID != "" {
			pmid, err := strconv.Atoi(row.ExistingPMID)
			if err != nil {
				return result, &RowError{Line: row.Line, Field: colExistingPMID, Reason: fmt.Sprintf("invalid pmid %q", row.ExistingPMID)}
			}
			existing = &pmid
		}

		outcome, detail, err := r.applyRow(ctx, rowUpdate{
			user:         user,
			record:       match.Record,
			line:         row.Line,
			pmidField:    colReviewedPMIDs,
			pmids:        row.ReviewedPMIDs,
			existingPMID: existing,
		}, result)
		if err != nil {
			return result, err
		}
		r.record(result, VariantLegacy, row.ID, outcome, detail)
	}

	if err := r.buildReport(ctx, result); err != nil {
		return result, err
	}
	log.Info("Legacy import finished",
		zap.Int("rows", len(rows)),
		zap.Int("links_added", result.LinksAdded),
		zap.Int("publications_created", result.PublicationsCreated),
		zap.Int("under_evidenced", len(result.Report.Rows)))
	return result, nil
}

// LoadPublications links new PMIDs to records named by G2P ID and moves matching
// mined candidates to curated.
func (r *Reconciler) LoadPublications(ctx context.Context, email string, rows []CurrentRow) (*ImportResult, error) {
	log := r.Logger.With(zap.String("variant", string(VariantCurrent)))
	result := &ImportResult{Log: &AuditLog{}}

	user, err := ActingUser(ctx, r.Store, email)
	if err != nil {
		return result, err
	}

	rc := NewRunContext()
	for _, row := range rows {
		record, err := r.Store.LiveRecordByStableID(ctx, row.StableID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, fmt.Errorf("line %d: %w: %s", row.Line, ErrRecordNotFound, row.StableID)
		}
		if err != nil {
			return result, fmt.Errorf("line %d: fetching %s: %w", row.Line, row.StableID, err)
		}

		if record.Genotype != row.Genotype || record.Locus.Name != row.GeneSymbol {
			r.record(result, VariantCurrent, row.StableID, OutcomeMismatch,
				fmt.Sprintf("data from file does not match data in G2P: %s; %s", record.Genotype, record.Disease.Name))
			continue
		}
		if !rc.Claim(record.StableID, row.StableID) {
			r.record(result, VariantCurrent, row.StableID, OutcomeCollision,
				fmt.Sprintf("%s is already mapped to a record. Check %s", record.StableID, row.GeneSymbol))
			continue
		}

		outcome, detail, err := r.applyRow(ctx, rowUpdate{
			user:       user,
			record:     record,
			line:       row.Line,
			pmidField:  colNewPMIDs,
			pmids:      row.NewPMIDs,
			trackMined: true,
		}, result)
		if err != nil {
			return result, err
		}
		r.record(result, VariantCurrent, row.StableID, outcome, detail)
	}

	if err := r.buildReport(ctx, result); err != nil {
		return result, err
	}
	log.Info("Publication load finished",
		zap.Int("rows", len(rows)),
		zap.Int("links_added", result.LinksAdded),
		zap.Int("publications_created", result.PublicationsCreated),
		zap.Int("under_evidenced", len(result.Report.Rows)))
	return result, nil
}

// ActingUser resolves the account that mutations are attributed to.
func ActingUser(ctx context.Context, s *store.Store, email string) (*models.User, error) {
	user, err := s.UserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w %s", ErrUnknownUser, email)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user %s: %w", email, err)
	}
	return user, nil
}

func (r *Reconciler) record(result *ImportResult, variant Variant, rowID string, outcome AuditOutcome, detail string) {
	result.Log.Add(rowID, outcome, detail)
	importRowsCounter.WithLabelValues(string(variant), string(outcome)).Inc()
}

type rowUpdate struct {
	user         *models.User
	record       *models.LocusGenotypeDisease
	line         int
	pmidField    string
	pmids        []string
	existingPMID *int // must already be linked or the comment says so
	trackMined   bool
}

// applyRow links the row's PMIDs to the record in a single transaction.
func (r *Reconciler) applyRow(ctx context.Context, u rowUpdate, result *ImportResult) (AuditOutcome, string, error) {
	stableID := u.record.StableID
	var (
		outcome AuditOutcome
		comment strings.Builder
		added   int
		created int
	)

	err := r.Store.Transaction(ctx, func(tx *store.Store) error {
		linked, err := checkLinks(ctx, tx, u.record)
		if err != nil {
			return err
		}

		if u.existingPMID != nil && !linked[*u.existingPMID] {
			fmt.Fprintf(&comment, "%s is not associated with %d; ", stableID, *u.existingPMID)
		}

		if len(u.pmids) == 0 {
			outcome = OutcomeNoPMIDs
			comment.Reset()
			fmt.Fprintf(&comment, "No pmids to add for %s;", stableID)
			return nil
		}

		resolver := r.Resolver.WithStore(tx)
		for _, raw := range u.pmids {
			pmid, err := strconv.Atoi(raw)
			if err != nil {
				return &RowError{Line: u.line, Field: u.pmidField, Reason: fmt.Sprintf("invalid pmid %q", raw)}
			}
			if linked[pmid] {
				continue
			}

			pub, isNew, err := resolver.Resolve(ctx, u.user, pmid)
			if err != nil {
				return fmt.Errorf("line %d: %w", u.line, err)
			}
			if isNew {
				created++
			}
			if _, err := tx.CreateLink(ctx, u.user, u.record.ID, pub.ID); err != nil {
				return err
			}
			linked[pmid] = true
			added++
			fmt.Fprintf(&comment, "added:%d; ", pmid)

			if u.trackMined {
				if err := curateMined(ctx, tx, u.user, u.record.ID, pmid); err != nil {
					return err
				}
			}
		}

		if added == 0 {
			outcome = OutcomeNothingNew
			fmt.Fprintf(&comment, "No new pmids to add for %s;", stableID)
		} else {
			outcome = OutcomeUpdated
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}

	result.LinksAdded += added
	result.PublicationsCreated += created
	linksAddedCounter.Add(float64(added))
	return outcome, comment.String(), nil
}

// checkLinks returns the PMIDs live-linked to record. Any soft-deleted link is a
// DataIntegrityError.
func checkLinks(ctx context.Context, s *store.Store, record *models.LocusGenotypeDisease) (map[int]bool, error) {
	links, err := s.RecordLinks(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching links of %s: %w", record.StableID, err)
	}
	linked := make(map[int]bool, len(links))
	var deleted []int
	for _, link := range links {
		if link.IsDeleted {
			deleted = append(deleted, link.Publication.PMID)
			continue
		}
		linked[link.Publication.PMID] = true
	}
	if len(deleted) > 0 {
		return nil, &DataIntegrityError{StableID: record.StableID, PMIDs: deleted}
	}
	return linked, nil
}

func curateMined(ctx context.Context, tx *store.Store, user *models.User, lgdID uint, pmid int) error {
	candidate, err := tx.MinedCandidate(ctx, lgdID, pmid, models.MinedStatusMined)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("looking up mined publication %d: %w", pmid, err)
	}
	return tx.SetMinedStatus(ctx, user, candidate, models.MinedStatusCurated)
}

// buildReport lists live definitive records left with exactly one live publication.
func (r *Reconciler) buildReport(ctx context.Context, result *ImportResult) error {
	evidence, err := r.Store.LiveRecordsByConfidence(ctx, models.ConfidenceDefinitive)
	if err != nil {
		return fmt.Errorf("building under-evidenced report: %w", err)
	}
	report := &UnderEvidencedReport{}
	base := strings.TrimRight(r.RecordURLBase, "/")
	for _, e := range evidence {
		if e.LiveLinks != 1 {
			continue
		}
		report.Rows = append(report.Rows, ReportRow{
			StableID:  e.Record.StableID,
			Gene:      e.Record.Locus.Name,
			Disease:   e.Record.Disease.Name,
			Genotype:  e.Record.Genotype,
			Mechanism: e.Record.Mechanism,
			URL:       base + "/" + e.Record.StableID,
		})
	}
	result.Report = report
	return nil
}
