package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"g2p-curation/models"
	"g2p-curation/providers"
	"g2p-curation/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ontologySourceMondo = "Mondo"
	mappedByDataSource  = "Data source"
)

// OntologyRef names the ontology term a new disease maps to.
type OntologyRef struct {
	Accession   string `json:"accession"`
	Term        string `json:"term"`
	Description string `json:"description"`
}

// PublicationRef is the publication supporting a new disease.
type PublicationRef struct {
	PMID          int    `json:"pmid" binding:"required"`
	Title         string `json:"title"`
	Families      *int   `json:"families"`
	Consanguinity string `json:"consanguinity"`
	Ethnicity     string `json:"ethnicity"`
}

// NewDisease is a disease creation request.
type NewDisease struct {
	Name        string          `json:"name" binding:"required"`
	MIM         string          `json:"mim"`
	Ontology    *OntologyRef    `json:"ontology_term"`
	Publication *PublicationRef `json:"publication"`
}

// DiseaseDeduplicator creates diseases whose canonical name is not taken by any
// existing disease name or synonym.
type DiseaseDeduplicator struct {
	Store    *store.Store
	Resolver *PublicationResolver
	Ontology providers.OntologyProvider
	Logger   *zap.Logger
}

// NewDiseaseDeduplicator creates a deduplicator.
func NewDiseaseDeduplicator(s *store.Store, resolver *PublicationResolver, ontology providers.OntologyProvider, logger *zap.Logger) *DiseaseDeduplicator {
	return &DiseaseDeduplicator{Store: s, Resolver: resolver, Ontology: ontology, Logger: logger}
}

// FindDuplicate returns the existing disease whose name or a synonym has the same
// canonical form as name, or nil.
func (d *DiseaseDeduplicator) FindDuplicate(ctx context.Context, name string) (*models.Disease, error) {
	return findDuplicate(ctx, d.Store, name)
}

func findDuplicate(ctx context.Context, s *store.Store, name string) (*models.Disease, error) {
	want := Canonicalize(name)
	diseases, err := s.AllDiseases(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing diseases: %w", err)
	}
	for i := range diseases {
		if Canonicalize(diseases[i].Name) == want {
			return &diseases[i], nil
		}
		for _, syn := range diseases[i].Synonyms {
			if Canonicalize(syn.Synonym) == want {
				return &diseases[i], nil
			}
		}
	}
	return nil, nil
}

// CreateDisease inserts the disease with its ontology mapping and publication in
// one transaction.
func (d *DiseaseDeduplicator) CreateDisease(ctx context.Context, user *models.User, req NewDisease) (*models.Disease, error) {
	log := d.Logger.With(zap.String("disease", req.Name))
	var disease *models.Disease

	err := d.Store.Transaction(ctx, func(tx *store.Store) error {
		existing, err := findDuplicate(ctx, tx, req.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return &DuplicateDiseaseError{Existing: existing.Name}
		}

		disease = &models.Disease{Name: strings.TrimSpace(req.Name), MIM: req.MIM}
		if err := tx.CreateDisease(ctx, user, disease); err != nil {
			return err
		}

		if o := req.Ontology; o != nil && o.Accession != "" && o.Term != "" {
			term, err := d.ontologyTerm(ctx, tx, user, o)
			if err != nil {
				return err
			}
			mapping := &models.DiseaseOntology{DiseaseID: disease.ID, OntologyTermID: term.ID, MappedBy: mappedByDataSource}
			if err := tx.CreateDiseaseOntology(ctx, user, mapping); err != nil {
				return err
			}
		}

		if p := req.Publication; p != nil {
			pub, _, err := d.Resolver.WithStore(tx).ResolveWithTitle(ctx, user, p.PMID, p.Title)
			if err != nil {
				return err
			}
			_, err = tx.DiseasePublication(ctx, disease.ID, pub.ID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				link := &models.DiseasePublication{
					DiseaseID:     disease.ID,
					PublicationID: pub.ID,
					Families:      p.Families,
					Consanguinity: p.Consanguinity,
					Ethnicity:     p.Ethnicity,
				}
				err = tx.CreateDiseasePublication(ctx, user, link)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Created disease", zap.Uint("id", disease.ID))
	return disease, nil
}

// ontologyTerm returns the cached term for an accession or validates and stores it.
// Accessions are stored with ":" separators (MONDO_0007947 becomes MONDO:0007947).
func (d *DiseaseDeduplicator) ontologyTerm(ctx context.Context, tx *store.Store, user *models.User, ref *OntologyRef) (*models.OntologyTerm, error) {
	accession := strings.ReplaceAll(ref.Accession, "_", ":")
	term, err := tx.OntologyTermByAccession(ctx, accession)
	if err == nil {
		return term, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("looking up ontology term %s: %w", accession, err)
	}

	found, err := d.Ontology.Lookup(ctx, accession)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOntologyAccession, ref.Accession)
	}

	description := ref.Description
	if description == "" && len(found.Description) > 0 {
		description = found.Description[0]
	}
	term = &models.OntologyTerm{
		Accession:   accession,
		Term:        strings.ReplaceAll(ref.Term, "_", ":"),
		Description: description,
		Source:      ontologySourceMondo,
	}
	if err := tx.CreateOntologyTerm(ctx, user, term); err != nil {
		return nil, err
	}
	return term, nil
}
