package services

import (
	"fmt"
	"strings"

	"g2p-curation/models"
)

// MatchInput is the part of an import row used to pick a record.
type MatchInput struct {
	GeneSymbol  string
	Genotype    string
	DiseaseName string
	// Mechanism holds the row's variant consequence; empty disables the mechanism rule.
	Mechanism string
}

// MatchResult is either a matched record or the reason there is none.
type MatchResult struct {
	Record  *models.LocusGenotypeDisease
	Outcome AuditOutcome
	Reason  string
}

// Matched reports whether a record was selected.
func (r MatchResult) Matched() bool {
	return r.Record != nil
}

// RunContext holds the state of one import run. A stable id can be consumed by
// only one row per run.
type RunContext struct {
	claimed map[string]string
}

// NewRunContext returns an empty run context.
func NewRunContext() *RunContext {
	return &RunContext{claimed: make(map[string]string)}
}

// Claim marks stableID as consumed by rowID. It returns false when the id was
// already claimed earlier in the run.
func (rc *RunContext) Claim(stableID, rowID string) bool {
	if _, ok := rc.claimed[stableID]; ok {
		return false
	}
	rc.claimed[stableID] = rowID
	return true
}

// Claimed reports whether stableID was consumed in this run.
func (rc *RunContext) Claimed(stableID string) bool {
	_, ok := rc.claimed[stableID]
	return ok
}

// Match selects the record for in among the gene's live candidates and claims it.
func (rc *RunContext) Match(in MatchInput, candidates []models.LocusGenotypeDisease, rowID string) MatchResult {
	res := MatchRecord(in, candidates)
	if !res.Matched() {
		return res
	}
	stableID := res.Record.StableID
	if !rc.Claim(stableID, rowID) {
		return MatchResult{
			Outcome: OutcomeCollision,
			Reason:  fmt.Sprintf("%s is already mapped to a record. Check %s", stableID, in.GeneSymbol),
		}
	}
	return res
}

// MatchRecord applies the matching rules without touching run state.
//
// With several candidates a strong match (genotype and mechanism) is preferred
// over a fallback match (genotype and disease name containment). Within each rule
// the last candidate scanned wins. A single candidate must match the genotype and
// either rule.
func MatchRecord(in MatchInput, candidates []models.LocusGenotypeDisease) MatchResult {
	switch len(candidates) {
	case 0:
		return MatchResult{Outcome: OutcomeNoMatch, Reason: fmt.Sprintf("No record for %s", in.GeneSymbol)}
	case 1:
		c := &candidates[0]
		if c.Genotype == in.Genotype && (mechanismMatches(in, c) || diseaseContained(in, c)) {
			return MatchResult{Record: c, Outcome: OutcomeUpdated}
		}
		return MatchResult{Outcome: OutcomeNoMatch, Reason: fmt.Sprintf("Cannot find record for %s", in.GeneSymbol)}
	}

	var strong, fallback *models.LocusGenotypeDisease
	for i := range candidates {
		c := &candidates[i]
		if c.Genotype != in.Genotype {
			continue
		}
		if mechanismMatches(in, c) {
			strong = c
		} else if diseaseContained(in, c) {
			fallback = c
		}
	}
	switch {
	case strong != nil:
		return MatchResult{Record: strong, Outcome: OutcomeUpdated}
	case fallback != nil:
		return MatchResult{Record: fallback, Outcome: OutcomeUpdated}
	}
	return MatchResult{Outcome: OutcomeNoMatch, Reason: fmt.Sprintf("Cannot find unique record for %s", in.GeneSymbol)}
}

func mechanismMatches(in MatchInput, c *models.LocusGenotypeDisease) bool {
	return in.Mechanism != "" && in.Mechanism == c.Mechanism
}

// diseaseContained drops the "<gene>-related " prefix from the candidate's disease
// and checks case-insensitive containment in the row's disease name.
func diseaseContained(in MatchInput, c *models.LocusGenotypeDisease) bool {
	name := strings.ReplaceAll(c.Disease.Name, in.GeneSymbol+"-related ", "")
	return strings.Contains(strings.ToLower(in.DiseaseName), strings.ToLower(name))
}
