// Package europepmc resolves PMIDs against the Europe PMC REST search service.
package europepmc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"g2p-curation/config"
	"g2p-curation/providers"

	"go.uber.org/zap"
)

// maxListedAuthors is the number of authors spelled out before "et al.".
const maxListedAuthors = 3

// Fetcher implements providers.LiteratureProvider for Europe PMC.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	client *http.Client
}

// NewFetcher creates a Europe PMC fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger, client: &http.Client{Timeout: cfg.HTTPTimeout}}
}

// Name returns the provider name.
func (f *Fetcher) Name() string {
	return "europepmc"
}

// Lookup fetches the core metadata of one PMID.
func (f *Fetcher) Lookup(ctx context.Context, pmid int) (*providers.LookupResult, error) {
	log := f.Logger.With(zap.Int("pmid", pmid))

	query := fmt.Sprintf("EXT_ID:%d AND SRC:MED", pmid)
	searchURL := fmt.Sprintf("%s/search?query=%s&format=json&resultType=core",
		strings.TrimRight(f.Config.EuropePMCBaseURL, "/"), url.QueryEscape(query))
	log.Debug("Calling Europe PMC", zap.String("url", searchURL))

	body, err := providers.Get(ctx, f.client, searchURL)
	if err != nil {
		return nil, fmt.Errorf("europepmc lookup %d: %w", pmid, err)
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("europepmc lookup %d: decoding response: %w", pmid, err)
	}
	if resp.HitCount == 0 || len(resp.ResultList.Result) == 0 {
		log.Info("PMID not found in Europe PMC")
		return &providers.LookupResult{HitCount: 0}, nil
	}

	result := mapArticle(&resp.ResultList.Result[0])
	result.HitCount = resp.HitCount
	return result, nil
}

func mapArticle(article *Article) *providers.LookupResult {
	out := &providers.LookupResult{
		Result:  providers.Result{Title: article.Title},
		Authors: formatAuthors(article),
	}
	if year, err := strconv.Atoi(strings.TrimSpace(article.PubYear)); err == nil {
		out.Result.PubYear = &year
	}
	if doi := strings.TrimSpace(article.DOI); doi != "" {
		out.Result.DOI = &doi
	}
	return out
}

// formatAuthors lists the first authors as "Last Initials" and falls back to the
// pre-formatted author string when no structured list was returned.
func formatAuthors(article *Article) string {
	authors := article.AuthorList.Author
	if len(authors) == 0 {
		return strings.TrimSuffix(strings.TrimSpace(article.AuthorString), ".")
	}

	names := make([]string, 0, maxListedAuthors)
	for _, a := range authors {
		if len(names) == maxListedAuthors {
			break
		}
		switch {
		case a.LastName != "":
			names = append(names, strings.TrimSpace(a.LastName+" "+a.Initials))
		case a.FullName != "":
			names = append(names, a.FullName)
		}
	}
	s := strings.Join(names, ", ")
	if len(authors) > maxListedAuthors {
		s += " et al."
	}
	return s
}
