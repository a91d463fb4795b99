package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Variant names an importer schema.
type Variant string

const (
	VariantLegacy  Variant = "legacy"
	VariantCurrent Variant = "current"
)

// Input column headers.
const (
	colID                 = "id"
	colGeneSymbol         = "gene symbol"
	colGenotype           = "allelic requirement"
	colDiseaseName        = "disease name"
	colVariantConsequence = "variant consequence"
	colG2PUpdated         = "g2p_updated"
	colReviewedPMIDs      = "reviewed_correct_pmids"
	colExistingPMID       = "existing_ddg2p_pmid"
	colStableID           = "g2p id"
	colNewPMIDs           = "new PMIDs"
)

var (
	legacyColumns  = []string{colGeneSymbol, colGenotype, colDiseaseName, colVariantConsequence, colG2PUpdated, colID, colReviewedPMIDs, colExistingPMID}
	currentColumns = []string{colStableID, colGeneSymbol, colGenotype, colDiseaseName, colNewPMIDs}
)

// ParseOptions tunes row validation per variant.
type ParseOptions struct {
	// RequirePMIDs makes a row without any PMID a fatal error instead of a
	// "No pmids to add" audit line.
	RequirePMIDs bool
}

// LegacyRow is one row of a legacy record PMID export.
type LegacyRow struct {
	Line               int
	ID                 string
	GeneSymbol         string
	Genotype           string
	DiseaseName        string
	VariantConsequence string
	G2PUpdated         string
	ReviewedPMIDs      []string
	ExistingPMID       string
}

// CurrentRow is one row of a publication load file for current records.
type CurrentRow struct {
	Line        int
	StableID    string
	GeneSymbol  string
	Genotype    string
	DiseaseName string
	NewPMIDs    []string
}

// ParseLegacyRows reads a legacy export. Legacy files are Latin-1 encoded.
func ParseLegacyRows(r io.Reader, opts ParseOptions) ([]LegacyRow, error) {
	t, err := readTable(charmap.ISO8859_1.NewDecoder().Reader(r), legacyColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]LegacyRow, 0, len(t.records))
	for i, rec := range t.records {
		line := t.lines[i]
		row := LegacyRow{
			Line:               line,
			ID:                 strings.TrimSpace(t.get(rec, colID)),
			GeneSymbol:         strings.TrimSpace(t.get(rec, colGeneSymbol)),
			Genotype:           normalizeGenotype(t.get(rec, colGenotype)),
			DiseaseName:        stripQuotes(t.get(rec, colDiseaseName)),
			VariantConsequence: normalizeConsequence(t.get(rec, colVariantConsequence)),
			G2PUpdated:         t.get(rec, colG2PUpdated),
			ReviewedPMIDs:      splitPMIDs(t.get(rec, colReviewedPMIDs), ";"),
			ExistingPMID:       strings.TrimSpace(t.get(rec, colExistingPMID)),
		}
		if row.GeneSymbol == "" {
			return nil, &RowError{Line: line, Field: colGeneSymbol, Reason: "gene symbol is missing"}
		}
		if opts.RequirePMIDs && len(row.ReviewedPMIDs) == 0 {
			return nil, &RowError{Line: line, Field: colReviewedPMIDs, Reason: "no pmids"}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseCurrentRows reads a UTF-8 publication load file.
func ParseCurrentRows(r io.Reader, opts ParseOptions) ([]CurrentRow, error) {
	t, err := readTable(r, currentColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]CurrentRow, 0, len(t.records))
	for i, rec := range t.records {
		line := t.lines[i]
		row := CurrentRow{
			Line:        line,
			StableID:    strings.TrimSpace(t.get(rec, colStableID)),
			GeneSymbol:  strings.TrimSpace(t.get(rec, colGeneSymbol)),
			Genotype:    stripQuotes(t.get(rec, colGenotype)),
			DiseaseName: stripQuotes(t.get(rec, colDiseaseName)),
			NewPMIDs:    splitPMIDs(t.get(rec, colNewPMIDs), "\n"),
		}
		if row.StableID == "" {
			return nil, &RowError{Line: line, Field: colStableID, Reason: "G2P ID is missing"}
		}
		if opts.RequirePMIDs && len(row.NewPMIDs) == 0 {
			return nil, &RowError{Line: line, Field: colNewPMIDs, Reason: "no pmids"}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type table struct {
	index   map[string]int
	records [][]string
	lines   []int
}

func (t *table) get(rec []string, col string) string {
	i := t.index[col]
	if i >= len(rec) {
		return ""
	}
	return rec[i]
}

// readTable reads a header row plus records, detecting a tab or comma delimiter
// from the header line.
func readTable(r io.Reader, required []string) (*table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("input is empty")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	t := &table{index: make(map[string]int, len(header))}
	for i, name := range header {
		t.index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := t.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header is missing columns: %s", strings.Join(missing, ", "))
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading rows: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if isBlank(rec) {
			continue
		}
		t.records = append(t.records, rec)
		t.lines = append(t.lines, line)
	}
	return t, nil
}

func detectDelimiter(data []byte) rune {
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	if bytes.IndexByte(first, '\t') >= 0 {
		return '\t'
	}
	return ','
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func stripQuotes(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "'", "")
}

func normalizeGenotype(s string) string {
	g := stripQuotes(s)
	if g == "monoallelic_X_hem" {
		return "monoallelic_X_hemizygous"
	}
	return g
}

func normalizeConsequence(s string) string {
	c := strings.ReplaceAll(strings.TrimSpace(s), "_variant", "")
	return strings.ReplaceAll(c, "_", " ")
}

// splitPMIDs splits a multi-value PMID cell, dropping blanks and repeats while
// keeping file order.
func splitPMIDs(s, sep string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, p := range strings.Split(strings.TrimSpace(s), sep) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
