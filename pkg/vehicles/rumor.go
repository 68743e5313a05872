package vehicles

import (
	"github.com/agentstation/utc"
)

// MaxEvidence is the cap on a rumor's evidence list. Only the most recent
// entries are retained; the cap is the backstop against a misbehaving feed.
const MaxEvidence = 10

// Stage is a coarse development-progress classification used before a
// vehicle is officially released.
type Stage string

// Development stages, weakest to strongest signal.
const (
	StageUnknown     Stage = "unknown"
	StageConcept     Stage = "concept"
	StageWhitebox    Stage = "whitebox"
	StageGreybox     Stage = "greybox"
	StageFinalReview Stage = "final_review"
)

// String returns the string representation of a stage.
func (s Stage) String() string {
	return string(s)
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageUnknown, StageConcept, StageWhitebox, StageGreybox, StageFinalReview:
		return true
	}
	return false
}

// SourceType classifies where a rumor observation came from.
type SourceType string

// Rumor source types.
const (
	SourceDevReport  SourceType = "dev_report"
	SourceRoadmap    SourceType = "roadmap"
	SourceDataMining SourceType = "data_mining"
)

// Evidence is one dated, sourced textual excerpt supporting a rumor's
// existence or development stage.
type Evidence struct {
	Source  SourceType `json:"source"`
	URL     string     `json:"url,omitempty"`
	Date    utc.Time   `json:"date"`
	Excerpt string     `json:"excerpt"`
}

// Rumor accumulates evidence for a not-yet-catalogued vehicle. Records are
// keyed for merge purposes by case-insensitive codename; the codename may be
// a placeholder like "Unannounced Vehicle #3".
type Rumor struct {
	ID           string     `json:"id"`
	Codename     string     `json:"codename"`
	PossibleName string     `json:"possible_name,omitempty"`
	Manufacturer string     `json:"manufacturer,omitempty"`
	Stage        Stage      `json:"stage"`
	SourceType   SourceType `json:"source_type"`
	SourceURL    string     `json:"source_url,omitempty"`
	SourceDate   utc.Time   `json:"source_date"`
	Evidence     []Evidence `json:"evidence"`
	Notes        string     `json:"notes,omitempty"`
	Active       bool       `json:"active"`

	// ConfirmedSlug links the rumor to a canonical vehicle once confirmed.
	// Populated by an administrative action, not by the pipeline.
	ConfirmedSlug string `json:"confirmed_slug,omitempty"`

	CreatedAt utc.Time `json:"created_at"`
	UpdatedAt utc.Time `json:"updated_at"`
}

// AppendEvidence appends items to the rumor's evidence list and truncates to
// the MaxEvidence most recent entries.
func (r *Rumor) AppendEvidence(items ...Evidence) {
	r.Evidence = append(r.Evidence, items...)
	if len(r.Evidence) > MaxEvidence {
		r.Evidence = r.Evidence[len(r.Evidence)-MaxEvidence:]
	}
}
