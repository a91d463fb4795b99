// Package providers defines the external lookup services used to validate
// publication and ontology identifiers.
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// UserAgent is sent with every outbound lookup.
const UserAgent = "g2p-curation/1.0 (+https://www.ebi.ac.uk/gene2phenotype)"

// ErrUnavailable wraps transport failures and non-2xx answers from a lookup service.
var ErrUnavailable = errors.New("lookup service unavailable")

// Result is the bibliographic part of a literature lookup. PubYear and DOI are
// optional upstream.
type Result struct {
	Title   string
	PubYear *int
	DOI     *string
}

// LookupResult is the answer for one PMID. HitCount zero means the PMID is unknown.
type LookupResult struct {
	HitCount int
	Result   Result
	Authors  string
}

// LiteratureProvider resolves PMIDs against an external bibliographic index.
type LiteratureProvider interface {
	// Lookup fetches the metadata of one PMID. An unknown PMID is not an error:
	// it is reported with HitCount 0.
	Lookup(ctx context.Context, pmid int) (*LookupResult, error)

	// Name returns the provider's unique name (e.g. "europepmc").
	Name() string
}

// OntologyResult is the validated label of an ontology accession.
type OntologyResult struct {
	Accession   string
	Label       string
	Description []string
}

// OntologyProvider validates ontology accessions. An unknown accession
// returns nil, nil.
type OntologyProvider interface {
	Lookup(ctx context.Context, accession string) (*OntologyResult, error)
}

// Get performs a GET with the shared User-Agent and returns the body of a 2xx response.
func Get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUnavailable, req.URL.Host, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	return body, nil
}
