package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidPublicationID is returned when the literature service has no hit for a PMID.
	ErrInvalidPublicationID = errors.New("invalid pmid")
	// ErrDuplicateDisease is returned when a new disease canonicalizes onto an existing one.
	ErrDuplicateDisease = errors.New("disease already exists")
	// ErrUnknownUser is returned when the acting user's email is not registered.
	ErrUnknownUser = errors.New("invalid user")
	// ErrInvalidOntologyAccession is returned when the ontology service does not know an accession.
	ErrInvalidOntologyAccession = errors.New("invalid mondo id")
	// ErrPublicationExists is returned when creating a publication that is already stored.
	ErrPublicationExists = errors.New("publication already exists")
	// ErrRecordNotFound is returned when an import row names a G2P ID with no live record.
	ErrRecordNotFound = errors.New("invalid G2P ID")
	// ErrNotFound is returned by catalog views for unknown or hidden entities.
	ErrNotFound = errors.New("not found")
)

// DataIntegrityError reports soft-deleted publication links on a record an
// import is about to modify.
type DataIntegrityError struct {
	StableID string
	PMIDs    []int
}

func (e *DataIntegrityError) Error() string {
	pmids := append([]int(nil), e.PMIDs...)
	sort.Ints(pmids)
	parts := make([]string, len(pmids))
	for i, p := range pmids {
		parts[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("there are deleted LGD-publication rows for %s (pmids %s); update the import script",
		e.StableID, strings.Join(parts, ", "))
}

// RowError is a malformed input row. It always aborts the run.
type RowError struct {
	Line   int
	Field  string
	Reason string
}

func (e *RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Reason)
}

// DuplicateDiseaseError names the disease a candidate collided with.
type DuplicateDiseaseError struct {
	Existing string
}

func (e *DuplicateDiseaseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateDisease, e.Existing)
}

func (e *DuplicateDiseaseError) Unwrap() error {
	return ErrDuplicateDisease
}
