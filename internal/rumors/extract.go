// Package rumors mines text feeds for evidence of vehicles that are not yet
// in the canonical catalog and maintains rumor records for them.
package rumors

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/utc"

	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// Observation is one candidate rumor sighting extracted from a feed before
// filtering and merging.
type Observation struct {
	Codename     string
	PossibleName string
	Manufacturer string
	Stage        vehicles.Stage
	Source       vehicles.SourceType
	URL          string
	Date         utc.Time
	Excerpt      string
	Notes        string
}

// stageKeywords maps stage terms to the canonical stage, ordered most
// specific first so "final review" never matches a weaker term it contains.
var stageKeywords = []struct {
	term  string
	stage vehicles.Stage
}{
	{"final review", vehicles.StageFinalReview},
	{"early concept", vehicles.StageConcept},
	{"concepting", vehicles.StageConcept},
	{"greybox", vehicles.StageGreybox},
	{"graybox", vehicles.StageGreybox},
	{"whitebox", vehicles.StageWhitebox},
	{"concept", vehicles.StageConcept},
}

// DetectStage returns the development stage implied by text, or StageUnknown
// when no stage term is present.
func DetectStage(text string) vehicles.Stage {
	lower := strings.ToLower(text)
	for _, kw := range stageKeywords {
		if strings.Contains(lower, kw.term) {
			return kw.stage
		}
	}
	return vehicles.StageUnknown
}

var (
	// "3rd unannounced vehicle", "2 unannounced ships".
	unannouncedPattern = regexp.MustCompile(`(?i)\b(\d+)(?:st|nd|rd|th)?\s+unannounced\s+(?:vehicle|ship)s?\b`)

	// A capitalized multi-word run, the shape of a manufacturer-model name.
	namePattern = regexp.MustCompile(`\b[A-Z][A-Za-z0-9'-]*(?:\s+[A-Z][A-Za-z0-9'-]*)+\b`)

	sentenceSplit = regexp.MustCompile(`[.!?\n]+`)
)

// leadingStopwords are sentence-initial words that capitalize for grammar,
// not identity. They are trimmed off name candidates, and a candidate that
// is nothing but stopwords is discarded.
var leadingStopwords = map[string]bool{
	"The": true, "This": true, "That": true, "These": true, "Those": true,
	"Our": true, "Their": true, "A": true, "An": true, "In": true,
	"On": true, "At": true, "After": true, "Before": true, "During": true,
	"Meanwhile": true, "Finally": true, "Next": true, "Now": true,
	"It": true, "We": true, "They": true,
}

const maxExcerpt = 240

// Mine extracts rumor observations from free text. Two rule sets apply per
// sentence: numeric "unannounced vehicle" placeholders, and capitalized
// multi-word names co-located with a stage term.
func Mine(text string, source vehicles.SourceType, url string, date utc.Time) []Observation {
	var out []Observation

	// Placeholder mentions often sit a sentence away from their stage term,
	// so they fall back to a stage term found anywhere in the text.
	docStage := DetectStage(text)

	for _, sentence := range sentenceSplit.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		stage := DetectStage(sentence)
		excerpt := clip(sentence, maxExcerpt)

		for _, m := range unannouncedPattern.FindAllStringSubmatch(sentence, -1) {
			obsStage := stage
			if obsStage == vehicles.StageUnknown {
				obsStage = docStage
			}
			out = append(out, Observation{
				Codename: fmt.Sprintf("Unannounced Vehicle #%s", m[1]),
				Stage:    obsStage,
				Source:   source,
				URL:      url,
				Date:     date,
				Excerpt:  excerpt,
			})
		}

		if stage == vehicles.StageUnknown {
			continue
		}
		for _, raw := range namePattern.FindAllString(sentence, -1) {
			name := trimStopwords(raw)
			if name == "" || !strings.Contains(name, " ") {
				continue
			}
			out = append(out, Observation{
				Codename:     name,
				PossibleName: name,
				Stage:        stage,
				Source:       source,
				URL:          url,
				Date:         date,
				Excerpt:      excerpt,
			})
		}
	}
	return out
}

// trimStopwords drops grammatical leading words from a name candidate.
func trimStopwords(name string) string {
	words := strings.Fields(name)
	for len(words) > 0 && leadingStopwords[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// clip truncates on a rune boundary so a multi-byte excerpt stays valid
// UTF-8 all the way to the store.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
