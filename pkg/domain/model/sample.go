package model

import (
	"slices"
	"strings"
)

// SampleRecord holds the fields of a GEO sample page that decide whether the
// sample's runs are downloaded
type SampleRecord struct {
	Accession   string // GEO sample accession (GSM...)
	Strategy    string // "Library strategy" table value
	Organism    string // "Organism" table value
	RelationKey string // SRA relation value, empty when the page has none
}

// SampleFilter selects samples by library strategy and organism
type SampleFilter struct {
	Library string   // normalized library strategy
	Species []string // normalized organism names
}

// asciiPunctuation is the set of characters replaced by spaces in organism names
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// NormalizeSpecies converts a user supplied organism name into the form used
// for matching: punctuation becomes spaces, then the result is lower-cased
// and trimmed. "homo_sapiens" and "Homo sapiens" both become "homo sapiens".
func NormalizeSpecies(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunctuation, r) {
			return ' '
		}
		return r
	}, s)
	return strings.ToLower(strings.TrimSpace(mapped))
}

// NewSampleFilter builds a filter with normalized library and species
func NewSampleFilter(library string, species []string) SampleFilter {
	filter := SampleFilter{
		Library: strings.ToLower(strings.TrimSpace(library)),
	}
	for _, s := range species {
		filter.Species = append(filter.Species, NormalizeSpecies(s))
	}
	return filter
}

// MatchStrategy reports whether the page's library strategy equals the
// requested one
func (f SampleFilter) MatchStrategy(strategy string) bool {
	return strings.ToLower(strings.TrimSpace(strategy)) == f.Library
}

// MatchOrganism reports whether the page's organism is accepted
func (f SampleFilter) MatchOrganism(organism string) bool {
	return slices.Contains(f.Species, strings.ToLower(strings.TrimSpace(organism)))
}

// Accepts reports whether runs of the sample should be resolved. A sample
// without an SRA relation is never accepted.
func (f SampleFilter) Accepts(rec *SampleRecord) bool {
	if rec == nil {
		return false
	}
	return f.MatchStrategy(rec.Strategy) && f.MatchOrganism(rec.Organism) && rec.RelationKey != ""
}
