// Package matcher resolves free-text establishment records returned by the
// price-transparency API to internal market entities.
package matcher

import (
	"strings"
	"unicode/utf8"

	"despensa/internal/client/menorpreco"
	"despensa/internal/models"
)

// Matcher is the deterministic two-stage heuristic. Stage one compares the
// market's registered legal name against the establishment name token by
// token; stage two, applied only when the market has an address on file,
// cross-checks street, street number and neighborhood. The first candidate
// passing both stages wins; there is no scoring across candidates.
type Matcher struct {
	// MinNameTokens is how many legal-name tokens must appear inside the
	// establishment name for stage one to pass.
	MinNameTokens int
	// MinTokenLen excludes short tokens (articles like "de" and "e") from
	// the count: only tokens strictly longer than this participate.
	MinTokenLen int
	// MinAddressHits is how many of the three address fields must appear
	// inside the market's location string for stage two to pass.
	MinAddressHits int
}

func Default() Matcher {
	return Matcher{
		MinNameTokens:  2,
		MinTokenLen:    2,
		MinAddressHits: 2,
	}
}

// Resolve returns the first candidate matching the offer's establishment,
// or nil when none does. A nil result is a non-match, not a failure.
// Candidates without a legal name are never considered.
func (m Matcher) Resolve(offer menorpreco.Offer, candidates []models.Market) *models.Market {
	name := establishmentName(offer.Establishment)
	if name == "" {
		return nil
	}
	for i := range candidates {
		candidate := &candidates[i]
		if !candidate.Matchable() {
			continue
		}
		if !m.nameMatches(*candidate.LegalName, name) {
			continue
		}
		if !m.addressMatches(candidate.Location, offer.Establishment) {
			continue
		}
		return candidate
	}
	return nil
}

// establishmentName prefers the legal-entity field and falls back to the
// storefront name.
func establishmentName(e menorpreco.Establishment) string {
	if name := strings.TrimSpace(e.LegalName); name != "" {
		return name
	}
	return strings.TrimSpace(e.TradeName)
}

func (m Matcher) nameMatches(legalName, establishmentName string) bool {
	marketTokens := strings.Fields(strings.ToLower(legalName))
	offerTokens := strings.Fields(strings.ToLower(establishmentName))
	if len(marketTokens) == 0 || len(offerTokens) == 0 {
		return false
	}

	hits := 0
	for _, token := range marketTokens {
		if utf8.RuneCountInString(token) <= m.MinTokenLen {
			continue
		}
		for _, other := range offerTokens {
			if strings.Contains(other, token) {
				hits++
				break
			}
		}
	}
	return hits >= m.MinNameTokens
}

// addressMatches is the conditional second stage: markets without a location
// on file pass on name alone. That keeps address-less markets matchable at
// the cost of precision.
func (m Matcher) addressMatches(location *string, e menorpreco.Establishment) bool {
	if location == nil || strings.TrimSpace(*location) == "" {
		return true
	}
	loc := strings.ToLower(*location)

	hits := 0
	for _, field := range []string{e.Street, e.Number, e.District} {
		field = strings.ToLower(strings.TrimSpace(field))
		if field == "" {
			continue
		}
		if strings.Contains(loc, field) {
			hits++
		}
	}
	return hits >= m.MinAddressHits
}
