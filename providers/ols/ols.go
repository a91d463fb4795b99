// Package ols validates MONDO accessions with the EBI Ontology Lookup Service.
package ols

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"g2p-curation/config"
	"g2p-curation/providers"

	"go.uber.org/zap"
)

// Ontology is the OLS ontology every accession is searched in.
const Ontology = "mondo"

type searchResponse struct {
	Response struct {
		NumFound int   `json:"numFound"`
		Docs     []doc `json:"docs"`
	} `json:"response"`
}

type doc struct {
	Label       string   `json:"label"`
	Description []string `json:"description"`
	OboID       string   `json:"obo_id"`
	ShortForm   string   `json:"short_form"`
}

// Fetcher implements providers.OntologyProvider.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	client *http.Client
}

// NewFetcher creates an OLS fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger, client: &http.Client{Timeout: cfg.HTTPTimeout}}
}

// Lookup runs an exact search for accession. Only the first document is
// considered and it must carry a label.
func (c *Fetcher) Lookup(ctx context.Context, accession string) (*providers.OntologyResult, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s&ontology=%s&exact=1",
		strings.TrimRight(c.Config.OLSBaseURL, "/"), url.QueryEscape(accession), Ontology)
	c.Logger.Debug("Calling OLS", zap.String("accession", accession))

	body, err := providers.Get(ctx, c.client, searchURL)
	if err != nil {
		return nil, fmt.Errorf("ols lookup %s: %w", accession, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ols lookup %s: decoding response: %w", accession, err)
	}
	if len(resp.Response.Docs) == 0 || resp.Response.Docs[0].Label == "" {
		return nil, nil
	}

	first := resp.Response.Docs[0]
	acc := first.OboID
	if acc == "" {
		acc = accession
	}
	return &providers.OntologyResult{
		Accession:   acc,
		Label:       first.Label,
		Description: first.Description,
	}, nil
}
