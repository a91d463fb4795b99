package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"g2p-curation/models"
	"g2p-curation/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dateLayout          = "2006-01-02"
	panelSummaryRecords = 10
)

// Catalog builds the read views served by the API. Hidden panels are only
// included when the caller is authenticated.
type Catalog struct {
	Store  *store.Store
	Logger *zap.Logger
}

// NewCatalog creates a catalog.
func NewCatalog(s *store.Store, logger *zap.Logger) *Catalog {
	return &Catalog{Store: s, Logger: logger}
}

type PanelSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type PanelDetail struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Curators    []string `json:"curators"`
	LastUpdated *string  `json:"last_updated"`
}

type PanelStats struct {
	Records  int `json:"number of records"`
	Genes    int `json:"number of genes"`
	Diseases int `json:"number of disease"`
}

type RecordSummary struct {
	StableID   string  `json:"stable_id"`
	Locus      string  `json:"locus"`
	Disease    string  `json:"disease"`
	Genotype   string  `json:"genotype"`
	Mechanism  string  `json:"mechanism"`
	Confidence string  `json:"confidence"`
	DateReview *string `json:"date_review"`
}

type UserView struct {
	User     string   `json:"user"`
	Email    string   `json:"email"`
	IsActive bool     `json:"is_active"`
	Panels   []string `json:"panels"`
}

type GeneView struct {
	GeneSymbol  string   `json:"gene_symbol"`
	Sequence    string   `json:"sequence"`
	Start       int      `json:"start"`
	End         int      `json:"end"`
	Strand      int      `json:"strand"`
	Synonyms    []string `json:"synonyms"`
	LastUpdated *string  `json:"last_updated,omitempty"`
}

type GeneRecordSummary struct {
	StableID   string   `json:"stable_id"`
	Disease    string   `json:"disease"`
	Genotype   string   `json:"genotype"`
	Mechanism  string   `json:"mechanism"`
	Confidence string   `json:"confidence"`
	Panels     []string `json:"panels"`
}

type OntologyTermView struct {
	Accession   string `json:"accession"`
	Term        string `json:"term"`
	Description string `json:"description"`
	Source      string `json:"source"`
	MappedBy    string `json:"mapped_by"`
}

type DiseasePublicationView struct {
	PMID          int    `json:"pmid"`
	Title         string `json:"title"`
	Families      *int   `json:"families"`
	Consanguinity string `json:"consanguinity"`
	Ethnicity     string `json:"ethnicity"`
}

type DiseaseView struct {
	Name          string                   `json:"name"`
	MIM           string                   `json:"mim"`
	OntologyTerms []OntologyTermView       `json:"ontology_terms"`
	Publications  []DiseasePublicationView `json:"publications"`
	Synonyms      []string                 `json:"synonyms"`
	LastUpdated   *string                  `json:"last_updated,omitempty"`
}

type PublicationView struct {
	PMID    int     `json:"pmid"`
	Title   string  `json:"title"`
	Authors string  `json:"authors"`
	Year    *int    `json:"year"`
	DOI     *string `json:"doi"`
}

type RecordDetail struct {
	StableID     string            `json:"stable_id"`
	Locus        GeneView          `json:"locus"`
	Disease      DiseaseView       `json:"disease"`
	Genotype     string            `json:"genotype"`
	Mechanism    string            `json:"molecular_mechanism"`
	Confidence   string            `json:"confidence"`
	Publications []PublicationView `json:"publications"`
	Panels       []string          `json:"panels"`
	IsReviewed   bool              `json:"is_reviewed"`
	LastUpdated  *string           `json:"last_updated"`
}

// Panels lists panels by name.
func (c *Catalog) Panels(ctx context.Context, authenticated bool) ([]PanelSummary, error) {
	panels, err := c.Store.Panels(ctx, authenticated)
	if err != nil {
		return nil, err
	}
	out := make([]PanelSummary, 0, len(panels))
	for _, p := range panels {
		out = append(out, PanelSummary{Name: p.Name, Description: p.Description})
	}
	return out, nil
}

// Panel returns a panel with its curators and latest review date.
func (c *Catalog) Panel(ctx context.Context, name string, authenticated bool) (*PanelDetail, error) {
	panel, err := c.panel(ctx, name, authenticated)
	if err != nil {
		return nil, err
	}
	curators, err := c.Store.PanelCurators(ctx, panel.ID)
	if err != nil {
		return nil, err
	}
	records, err := c.Store.PanelRecords(ctx, panel.ID)
	if err != nil {
		return nil, err
	}

	detail := &PanelDetail{Name: panel.Name, Description: panel.Description, Curators: []string{}}
	for _, u := range curators {
		detail.Curators = append(detail.Curators, u.Username)
	}
	detail.LastUpdated = lastReviewed(records)
	return detail, nil
}

// PanelStats counts the live records of a panel and their distinct genes and diseases.
func (c *Catalog) PanelStats(ctx context.Context, name string, authenticated bool) (*PanelStats, error) {
	panel, err := c.panel(ctx, name, authenticated)
	if err != nil {
		return nil, err
	}
	records, err := c.Store.PanelRecords(ctx, panel.ID)
	if err != nil {
		return nil, err
	}
	genes := make(map[uint]struct{})
	diseases := make(map[uint]struct{})
	for _, r := range records {
		genes[r.LocusID] = struct{}{}
		diseases[r.DiseaseID] = struct{}{}
	}
	return &PanelStats{Records: len(records), Genes: len(genes), Diseases: len(diseases)}, nil
}

// PanelRecordsSummary returns the most recently reviewed records of a panel.
func (c *Catalog) PanelRecordsSummary(ctx context.Context, name string, authenticated bool) ([]RecordSummary, error) {
	panel, err := c.panel(ctx, name, authenticated)
	if err != nil {
		return nil, err
	}
	records, err := c.Store.PanelRecords(ctx, panel.ID)
	if err != nil {
		return nil, err
	}
	// null review dates sort last regardless of the database's NULL ordering
	var reviewed, unreviewed []models.LocusGenotypeDisease
	for _, r := range records {
		if r.DateReview != nil {
			reviewed = append(reviewed, r)
		} else {
			unreviewed = append(unreviewed, r)
		}
	}
	records = append(reviewed, unreviewed...)
	if len(records) > panelSummaryRecords {
		records = records[:panelSummaryRecords]
	}

	out := make([]RecordSummary, 0, len(records))
	for _, r := range records {
		out = append(out, RecordSummary{
			StableID:   r.StableID,
			Locus:      r.Locus.Name,
			Disease:    r.Disease.Name,
			Genotype:   r.Genotype,
			Mechanism:  r.Mechanism,
			Confidence: r.Confidence,
			DateReview: formatDate(r.DateReview),
		})
	}
	return out, nil
}

// Users lists users with the panels they curate.
func (c *Catalog) Users(ctx context.Context, authenticated bool) ([]UserView, error) {
	users, err := c.Store.Users(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		panels, err := c.Store.UserPanels(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		view := UserView{User: u.Username, Email: u.Email, IsActive: u.IsActive, Panels: visiblePanelNames(panels, authenticated)}
		out = append(out, view)
	}
	return out, nil
}

// Gene returns a gene with its synonyms and latest review date.
func (c *Catalog) Gene(ctx context.Context, symbol string) (*GeneView, error) {
	locus, err := c.Store.LocusByName(ctx, symbol)
	if err != nil {
		return nil, notFound(err, "gene", symbol)
	}
	records, err := c.Store.LiveRecordsForLocus(ctx, locus.ID)
	if err != nil {
		return nil, err
	}
	view := geneView(locus)
	view.LastUpdated = lastReviewed(records)
	return &view, nil
}

// GeneRecords summarises a gene's live records. Records only on hidden panels
// are left out for anonymous callers.
func (c *Catalog) GeneRecords(ctx context.Context, symbol string, authenticated bool) ([]GeneRecordSummary, error) {
	locus, err := c.Store.LocusByName(ctx, symbol)
	if err != nil {
		return nil, notFound(err, "gene", symbol)
	}
	records, err := c.Store.LiveRecordsForLocus(ctx, locus.ID)
	if err != nil {
		return nil, err
	}
	out := make([]GeneRecordSummary, 0, len(records))
	for _, r := range records {
		panels, err := c.Store.RecordPanels(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		names := visiblePanelNames(panels, authenticated)
		if len(names) == 0 && !authenticated {
			continue
		}
		out = append(out, GeneRecordSummary{
			StableID:   r.StableID,
			Disease:    r.Disease.Name,
			Genotype:   r.Genotype,
			Mechanism:  r.Mechanism,
			Confidence: r.Confidence,
			Panels:     names,
		})
	}
	return out, nil
}

// Disease returns a disease with its ontology terms, publications and synonyms.
func (c *Catalog) Disease(ctx context.Context, name string) (*DiseaseView, error) {
	disease, err := c.Store.DiseaseByName(ctx, name)
	if err != nil {
		return nil, notFound(err, "disease", name)
	}
	view, err := c.diseaseView(ctx, disease)
	if err != nil {
		return nil, err
	}
	records, err := c.Store.LiveRecordsForDisease(ctx, disease.ID)
	if err != nil {
		return nil, err
	}
	view.LastUpdated = lastReviewed(records)
	return view, nil
}

// Record returns the detail of a live record.
func (c *Catalog) Record(ctx context.Context, stableID string, authenticated bool) (*RecordDetail, error) {
	record, err := c.Store.LiveRecordByStableID(ctx, stableID)
	if err != nil {
		return nil, notFound(err, "record", stableID)
	}
	locus, err := c.Store.LocusByName(ctx, record.Locus.Name)
	if err != nil {
		return nil, err
	}
	disease, err := c.Store.DiseaseByName(ctx, record.Disease.Name)
	if err != nil {
		return nil, err
	}
	diseaseView, err := c.diseaseView(ctx, disease)
	if err != nil {
		return nil, err
	}
	links, err := c.Store.RecordLinks(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	panels, err := c.Store.RecordPanels(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	detail := &RecordDetail{
		StableID:     record.StableID,
		Locus:        geneView(locus),
		Disease:      *diseaseView,
		Genotype:     record.Genotype,
		Mechanism:    record.Mechanism,
		Confidence:   record.Confidence,
		Publications: []PublicationView{},
		Panels:       visiblePanelNames(panels, authenticated),
		IsReviewed:   record.IsReviewed,
		LastUpdated:  formatDate(record.DateReview),
	}
	for _, l := range links {
		if l.IsDeleted {
			continue
		}
		p := l.Publication
		detail.Publications = append(detail.Publications, PublicationView{PMID: p.PMID, Title: p.Title, Authors: p.Authors, Year: p.Year, DOI: p.DOI})
	}
	return detail, nil
}

func (c *Catalog) panel(ctx context.Context, name string, authenticated bool) (*models.Panel, error) {
	panel, err := c.Store.PanelByName(ctx, name, authenticated)
	if err != nil {
		return nil, notFound(err, "panel", name)
	}
	return panel, nil
}

func (c *Catalog) diseaseView(ctx context.Context, disease *models.Disease) (*DiseaseView, error) {
	ontologies, err := c.Store.DiseaseOntologies(ctx, disease.ID)
	if err != nil {
		return nil, err
	}
	pubs, err := c.Store.DiseasePublications(ctx, disease.ID)
	if err != nil {
		return nil, err
	}

	view := &DiseaseView{
		Name:          disease.Name,
		MIM:           disease.MIM,
		OntologyTerms: make([]OntologyTermView, 0, len(ontologies)),
		Publications:  make([]DiseasePublicationView, 0, len(pubs)),
		Synonyms:      make([]string, 0, len(disease.Synonyms)),
	}
	for _, o := range ontologies {
		view.OntologyTerms = append(view.OntologyTerms, OntologyTermView{
			Accession:   o.OntologyTerm.Accession,
			Term:        o.OntologyTerm.Term,
			Description: o.OntologyTerm.Description,
			Source:      o.OntologyTerm.Source,
			MappedBy:    o.MappedBy,
		})
	}
	for _, p := range pubs {
		view.Publications = append(view.Publications, DiseasePublicationView{
			PMID:          p.Publication.PMID,
			Title:         p.Publication.Title,
			Families:      p.Families,
			Consanguinity: p.Consanguinity,
			Ethnicity:     p.Ethnicity,
		})
	}
	for _, s := range disease.Synonyms {
		view.Synonyms = append(view.Synonyms, s.Synonym)
	}
	return view, nil
}

func geneView(locus *models.Locus) GeneView {
	view := GeneView{
		GeneSymbol: locus.Name,
		Sequence:   locus.Sequence,
		Start:      locus.Start,
		End:        locus.End,
		Strand:     locus.Strand,
		Synonyms:   make([]string, 0, len(locus.Synonyms)),
	}
	for _, s := range locus.Synonyms {
		view.Synonyms = append(view.Synonyms, s.Value)
	}
	return view
}

func visiblePanelNames(panels []models.Panel, authenticated bool) []string {
	names := []string{}
	for _, p := range panels {
		if authenticated || p.IsVisible {
			names = append(names, p.Name)
		}
	}
	return names
}

// lastReviewed returns the latest review date of the reviewed, live records.
func lastReviewed(records []models.LocusGenotypeDisease) *string {
	var latest *time.Time
	for _, r := range records {
		if r.IsDeleted || !r.IsReviewed || r.DateReview == nil {
			continue
		}
		if latest == nil || r.DateReview.After(*latest) {
			latest = r.DateReview
		}
	}
	return formatDate(latest)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func notFound(err error, kind, key string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, key)
	}
	return err
}
