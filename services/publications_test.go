package services

import (
	"context"
	"errors"
	"testing"

	"g2p-curation/models"
	"g2p-curation/providers"
	"g2p-curation/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeLiterature answers from a fixed table and counts lookups.
type fakeLiterature struct {
	results map[int]*providers.LookupResult
	calls   map[int]int
	err     error
}

func newFakeLiterature() *fakeLiterature {
	return &fakeLiterature{results: map[int]*providers.LookupResult{}, calls: map[int]int{}}
}

func (f *fakeLiterature) add(pmid int, title string, year int) {
	doi := "10.1000/" + title
	f.results[pmid] = &providers.LookupResult{
		HitCount: 1,
		Result:   providers.Result{Title: title, PubYear: &year, DOI: &doi},
		Authors:  "Doe J, Roe R",
	}
}

func (f *fakeLiterature) Name() string { return "fake" }

func (f *fakeLiterature) Lookup(_ context.Context, pmid int) (*providers.LookupResult, error) {
	f.calls[pmid]++
	if f.err != nil {
		return nil, f.err
	}
	if res, ok := f.results[pmid]; ok {
		return res, nil
	}
	return &providers.LookupResult{HitCount: 0}, nil
}

func (f *fakeLiterature) totalCalls() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func TestResolveFetchesOnce(t *testing.T) {
	s := storetest.New(t)
	lit := newFakeLiterature()
	lit.add(1852208, "Marfan <i>syndrome</i>\n caused by FBN1", 1991)
	r := NewPublicationResolver(s, lit, zaptest.NewLogger(t))
	user := storetest.User(t, s, "curator", "curator@example.org")
	ctx := context.Background()

	first, created, err := r.Resolve(ctx, user, 1852208)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Marfan syndrome caused by FBN1", first.Title)
	assert.Equal(t, "Doe J, Roe R", first.Authors)
	require.NotNil(t, first.Year)
	assert.Equal(t, 1991, *first.Year)

	second, created, err := r.Resolve(ctx, user, 1852208)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, lit.calls[1852208])

	history, err := s.HistoryFor(ctx, "publications")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, user.ID, history[0].UserID)
}

func TestResolveInvalidPMID(t *testing.T) {
	s := storetest.New(t)
	r := NewPublicationResolver(s, newFakeLiterature(), zaptest.NewLogger(t))

	_, _, err := r.Resolve(context.Background(), nil, 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPublicationID))
	assert.Zero(t, storetest.Count(t, s, &models.Publication{}, ""))
}

func TestResolveProviderFailure(t *testing.T) {
	s := storetest.New(t)
	lit := newFakeLiterature()
	lit.err = providers.ErrUnavailable
	r := NewPublicationResolver(s, lit, zaptest.NewLogger(t))

	_, _, err := r.Resolve(context.Background(), nil, 42)
	assert.ErrorIs(t, err, providers.ErrUnavailable)
}

func TestCreatePublication(t *testing.T) {
	s := storetest.New(t)
	lit := newFakeLiterature()
	lit.add(100, "Fetched title", 2020)
	r := NewPublicationResolver(s, lit, zaptest.NewLogger(t))
	ctx := context.Background()

	pub, err := r.Create(ctx, nil, 100, "Curator title")
	require.NoError(t, err)
	assert.Equal(t, "Curator title", pub.Title)

	_, err = r.Create(ctx, nil, 100, "")
	assert.ErrorIs(t, err, ErrPublicationExists)
	assert.Equal(t, 1, lit.calls[100])
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "A & B: the <sup>case</sup> study", CleanTitle("  A &amp; B:   the &lt;sup&gt;case&lt;/sup&gt; study "))
	assert.Equal(t, "Caf\u00e9 disease", CleanTitle("Cafe\u0301 <b>disease</b>"))
}
