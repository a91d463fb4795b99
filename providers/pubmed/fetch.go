package pubmed

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"g2p-curation/config"
	"g2p-curation/providers"

	"go.uber.org/zap"
)

const maxListedAuthors = 3

// Fetcher implements providers.LiteratureProvider for PubMed.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	client *http.Client
}

// NewFetcher creates a PubMed fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger, client: &http.Client{Timeout: cfg.HTTPTimeout}}
}

// Name returns the provider name.
func (f *Fetcher) Name() string {
	return "pubmed"
}

// Lookup fetches one PMID with EFetch. An empty article set means the PMID is unknown.
func (f *Fetcher) Lookup(ctx context.Context, pmid int) (*providers.LookupResult, error) {
	efetchURL := fmt.Sprintf("%s/efetch.fcgi?db=pubmed&id=%d&retmode=xml",
		strings.TrimRight(f.Config.PubMedBaseURL, "/"), pmid)
	if f.Config.PubMedAPIKey != "" {
		efetchURL += "&api_key=" + f.Config.PubMedAPIKey
	}
	f.Logger.Debug("Calling EFetch", zap.Int("pmid", pmid))

	body, err := providers.Get(ctx, f.client, efetchURL)
	if err != nil {
		return nil, fmt.Errorf("pubmed lookup %d: %w", pmid, err)
	}

	var set PubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("pubmed lookup %d: decoding response: %w", pmid, err)
	}
	for i := range set.PubmedArticle {
		if set.PubmedArticle[i].MedlineCitation.PMID == strconv.Itoa(pmid) {
			return mapArticle(&set.PubmedArticle[i]), nil
		}
	}
	f.Logger.Info("PMID not found in PubMed", zap.Int("pmid", pmid))
	return &providers.LookupResult{HitCount: 0}, nil
}

func mapArticle(article *PubmedArticle) *providers.LookupResult {
	a := article.MedlineCitation.Article
	out := &providers.LookupResult{
		HitCount: 1,
		Result:   providers.Result{Title: strings.TrimSpace(a.Title)},
	}

	// MedlineDate carries free text such as "1998 Dec-1999 Jan".
	yearStr := a.Journal.PubDate.Year
	if yearStr == "" && len(a.Journal.PubDate.MedlineDate) >= 4 {
		yearStr = a.Journal.PubDate.MedlineDate[:4]
	}
	if year, err := strconv.Atoi(yearStr); err == nil {
		out.Result.PubYear = &year
	}

	for _, id := range a.ELocationID {
		if id.IDType == "doi" && id.ValidYN != "N" {
			doi := strings.TrimSpace(id.Value)
			out.Result.DOI = &doi
			break
		}
	}

	names := make([]string, 0, maxListedAuthors)
	for _, author := range a.Authors {
		if len(names) == maxListedAuthors {
			break
		}
		if author.LastName != "" {
			names = append(names, strings.TrimSpace(author.LastName+" "+author.Initials))
		} else if author.CollectiveName != "" {
			names = append(names, author.CollectiveName)
		}
	}
	out.Authors = strings.Join(names, ", ")
	if len(a.Authors) > maxListedAuthors {
		out.Authors += " et al."
	}
	return out
}
