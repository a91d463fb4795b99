package services

import (
	"bufio"
	"fmt"
	"io"
)

// AuditOutcome classifies what an import did with one input row.
type AuditOutcome string

const (
	OutcomeAlreadyUpdated AuditOutcome = "already-updated"
	OutcomeNoMatch        AuditOutcome = "no-match"
	OutcomeCollision      AuditOutcome = "collision"
	OutcomeMismatch       AuditOutcome = "mismatch"
	OutcomeNoPMIDs        AuditOutcome = "no-pmids"
	OutcomeNothingNew     AuditOutcome = "nothing-new"
	OutcomeUpdated        AuditOutcome = "updated"
)

// AuditEntry is one line of the audit log.
type AuditEntry struct {
	RowID   string
	Outcome AuditOutcome
	Detail  string
}

// AuditLog collects entries in input order.
type AuditLog struct {
	Entries []AuditEntry
}

// Add appends an entry.
func (l *AuditLog) Add(rowID string, outcome AuditOutcome, detail string) {
	l.Entries = append(l.Entries, AuditEntry{RowID: rowID, Outcome: outcome, Detail: detail})
}

// Count returns the number of entries with the given outcome.
func (l *AuditLog) Count(outcome AuditOutcome) int {
	n := 0
	for _, e := range l.Entries {
		if e.Outcome == outcome {
			n++
		}
	}
	return n
}

// WriteTo writes one "<row id>\t<detail>" line per entry.
func (l *AuditLog) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for _, e := range l.Entries {
		n, err := fmt.Fprintf(bw, "%s\t%s\n", e.RowID, e.Detail)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}

// ReportHeader is the first line of the under-evidenced report.
const ReportHeader = "G2P ID\tGene\tDisease\tGenotype\tMechanism\tURL"

// ReportRow is a definitive record supported by a single publication.
type ReportRow struct {
	StableID  string
	Gene      string
	Disease   string
	Genotype  string
	Mechanism string
	URL       string
}

// UnderEvidencedReport is the follow-up queue produced at the end of an import.
type UnderEvidencedReport struct {
	Rows []ReportRow
}

// WriteTo writes the header and one tab-separated line per row.
func (r *UnderEvidencedReport) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	n, err := fmt.Fprintln(bw, ReportHeader)
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, row := range r.Rows {
		n, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			row.StableID, row.Gene, row.Disease, row.Genotype, row.Mechanism, row.URL)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}
