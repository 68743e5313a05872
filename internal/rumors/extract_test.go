package rumors

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

func TestDetectStage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want vehicles.Stage
	}{
		{"final review", "The ship entered final review last week", vehicles.StageFinalReview},
		{"final review not misread as weaker term", "final review", vehicles.StageFinalReview},
		{"greybox", "now in greybox", vehicles.StageGreybox},
		{"graybox spelling", "moved to graybox", vehicles.StageGreybox},
		{"whitebox", "currently in whitebox", vehicles.StageWhitebox},
		{"early concept", "still in early concept", vehicles.StageConcept},
		{"concepting", "the team is concepting a new hull", vehicles.StageConcept},
		{"bare concept", "approved the concept", vehicles.StageConcept},
		{"case insensitive", "Entered GREYBOX", vehicles.StageGreybox},
		{"no stage term", "general progress update", vehicles.StageUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectStage(tt.text))
		})
	}
}

func TestMineUnannouncedPlaceholder(t *testing.T) {
	text := "Work continues on the 3rd unannounced vehicle. It is currently in whitebox."

	observations := Mine(text, vehicles.SourceDevReport, "https://feeds.test/report/1", utc.Now())

	require.Len(t, observations, 1)
	assert.Equal(t, "Unannounced Vehicle #3", observations[0].Codename)
	assert.Equal(t, vehicles.StageWhitebox, observations[0].Stage)
	assert.Equal(t, vehicles.SourceDevReport, observations[0].Source)
	assert.NotEmpty(t, observations[0].Excerpt)
}

func TestMineNamedEntityNeedsStageTerm(t *testing.T) {
	withStage := Mine("The Crusader Spirit has entered greybox.", vehicles.SourceDataMining, "", utc.Now())
	require.Len(t, withStage, 1)
	assert.Equal(t, "Crusader Spirit", withStage[0].Codename)
	assert.Equal(t, "Crusader Spirit", withStage[0].PossibleName)
	assert.Equal(t, vehicles.StageGreybox, withStage[0].Stage)

	// The same name without a stage term in its sentence is not a sighting.
	withoutStage := Mine("The Crusader Spirit looked great at the expo.", vehicles.SourceDataMining, "", utc.Now())
	assert.Empty(t, withoutStage)
}

func TestMineSkipsSingleWordAndStopwordNames(t *testing.T) {
	observations := Mine("Meanwhile It entered whitebox. Progress entered greybox.", vehicles.SourceDevReport, "", utc.Now())
	assert.Empty(t, observations)
}

func TestMineMultipleSentences(t *testing.T) {
	text := "The Aegis Vulcan moved to final review! Separately, the 2nd unannounced ship is still concepting."

	observations := Mine(text, vehicles.SourceDevReport, "", utc.Now())

	require.Len(t, observations, 2)
	assert.Equal(t, "Aegis Vulcan", observations[0].Codename)
	assert.Equal(t, vehicles.StageFinalReview, observations[0].Stage)
	assert.Equal(t, "Unannounced Vehicle #2", observations[1].Codename)
	assert.Equal(t, vehicles.StageConcept, observations[1].Stage)
}

func TestClipKeepsExcerptValidUTF8(t *testing.T) {
	long := "Der Anvil Prüfstand läuft " + strings.Repeat("ü", maxExcerpt)

	clipped := clip(long, maxExcerpt)

	assert.LessOrEqual(t, len(clipped), maxExcerpt)
	assert.True(t, utf8.ValidString(clipped))
}
