package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"g2p-curation/models"
	"g2p-curation/providers"
	"g2p-curation/store"

	"go.uber.org/zap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

var (
	htmlTagRE    = regexp.MustCompile(`<[^>]+>`)
	titleSpaceRE = regexp.MustCompile(`\s+`)
)

// PublicationResolver returns stored publications and fetches unseen PMIDs from
// the literature service.
type PublicationResolver struct {
	Store    *store.Store
	Provider providers.LiteratureProvider
	Logger   *zap.Logger
}

// NewPublicationResolver creates a resolver.
func NewPublicationResolver(s *store.Store, provider providers.LiteratureProvider, logger *zap.Logger) *PublicationResolver {
	return &PublicationResolver{Store: s, Provider: provider, Logger: logger}
}

// WithStore returns a copy of the resolver bound to s, typically a transaction.
func (r *PublicationResolver) WithStore(s *store.Store) *PublicationResolver {
	cp := *r
	cp.Store = s
	return &cp
}

// Resolve returns the publication for pmid. The boolean reports whether it was
// created by this call. Existing publications are never modified.
func (r *PublicationResolver) Resolve(ctx context.Context, user *models.User, pmid int) (*models.Publication, bool, error) {
	return r.ResolveWithTitle(ctx, user, pmid, "")
}

// ResolveWithTitle is Resolve with a title that replaces the fetched one when the
// publication has to be created.
func (r *PublicationResolver) ResolveWithTitle(ctx context.Context, user *models.User, pmid int, title string) (*models.Publication, bool, error) {
	pub, err := r.Store.PublicationByPMID(ctx, pmid)
	if err == nil {
		return pub, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("looking up publication %d: %w", pmid, err)
	}

	pub, err = r.fetch(ctx, pmid, title)
	if err != nil {
		return nil, false, err
	}
	if err := r.Store.CreatePublication(ctx, user, pub); err != nil {
		return nil, false, err
	}
	publicationsCreatedCount.Inc()
	r.Logger.Info("Stored new publication", zap.Int("pmid", pmid), zap.String("provider", r.Provider.Name()))
	return pub, true, nil
}

// Create stores a publication that must not exist yet. A non-empty title
// overrides the one returned by the literature service.
func (r *PublicationResolver) Create(ctx context.Context, user *models.User, pmid int, title string) (*models.Publication, error) {
	if _, err := r.Store.PublicationByPMID(ctx, pmid); err == nil {
		return nil, fmt.Errorf("%w: %d", ErrPublicationExists, pmid)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("looking up publication %d: %w", pmid, err)
	}

	pub, err := r.fetch(ctx, pmid, title)
	if err != nil {
		return nil, err
	}
	if err := r.Store.CreatePublication(ctx, user, pub); err != nil {
		return nil, err
	}
	publicationsCreatedCount.Inc()
	return pub, nil
}

func (r *PublicationResolver) fetch(ctx context.Context, pmid int, title string) (*models.Publication, error) {
	res, err := r.Provider.Lookup(ctx, pmid)
	if err != nil {
		return nil, err
	}
	if res.HitCount == 0 {
		return nil, fmt.Errorf("%w %d", ErrInvalidPublicationID, pmid)
	}
	if title == "" {
		title = res.Result.Title
	}
	return &models.Publication{
		PMID:    pmid,
		Title:   CleanTitle(title),
		Authors: res.Authors,
		Year:    res.Result.PubYear,
		DOI:     res.Result.DOI,
	}, nil
}

// CleanTitle strips markup from a title returned by the literature service and
// normalizes its whitespace.
func CleanTitle(title string) string {
	s := htmlTagRE.ReplaceAllString(title, "")
	s = html.UnescapeString(s)
	s, _, _ = transform.String(norm.NFC, s)
	s = titleSpaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
