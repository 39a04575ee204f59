package experiment

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileExpression(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    string
		wantErr string
	}{
		{
			name: "boolean expression",
			give: `type == "v6" && proposedEnrollment > 7`,
		},
		{
			name: "membership",
			give: `"control" in branches`,
		},
		{
			name:    "non boolean result",
			give:    `type`,
			wantErr: "failed to compile expression",
		},
		{
			name:    "unknown identifier",
			give:    `color == "red"`,
			wantErr: "failed to compile expression",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, err := CompileExpression(tt.give)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				assert.Nil(t, e)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.give, e.String())
		})
	}
}

func TestExpression_Match(t *testing.T) {
	t.Parallel()

	var (
		legacy = legacyExperiment("legacy", "pref", lo.ToPtr(StatusComplete), jan1, feb1)
		nimbus = nimbusExperiment("nimbus", StatusLive, jan1, never)
	)
	legacy.IsHighPopulation = true

	tests := []struct {
		name       string
		give       string
		wantLegacy bool
		wantNimbus bool
	}{
		{name: "type", give: `type == "v6"`, wantLegacy: false, wantNimbus: true},
		{name: "branch membership", give: `"control" in branches`, wantLegacy: true, wantNimbus: false},
		{name: "high population", give: `isHighPopulation`, wantLegacy: true, wantNimbus: false},
		{name: "missing end date", give: `endDate == nil`, wantLegacy: false, wantNimbus: true},
		{name: "missing experimenter slug", give: `experimenterSlug == ""`, wantLegacy: false, wantNimbus: true},
		{name: "probe sets", give: `len(probeSets) > 0`, wantLegacy: false, wantNimbus: true},
		{name: "enrollment", give: `proposedEnrollment >= 14`, wantLegacy: false, wantNimbus: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, err := CompileExpression(tt.give)
			require.NoError(t, err)

			got, err := e.Match(legacy)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLegacy, got)

			got, err = e.Match(nimbus)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNimbus, got)
		})
	}
}

func TestByExpression(t *testing.T) {
	t.Parallel()

	filter, err := ByExpression(`status == "Live"`)
	require.NoError(t, err)

	got := newTestCollection().Filter(filter)
	assert.Equal(t, []string{"nimbus-live"}, slugs(got.Experiments()))

	_, err = ByExpression(`status ==`)
	require.Error(t, err)
}

func TestCollection_Where(t *testing.T) {
	t.Parallel()

	e, err := CompileExpression(`type == "pref" && status != "Complete"`)
	require.NoError(t, err)

	got, err := newTestCollection().Where(e)
	require.NoError(t, err)
	assert.Equal(t, []string{"normandy-pref-unknown"}, slugs(got.Experiments()))
}
