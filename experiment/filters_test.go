package experiment

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestByType(t *testing.T) {
	t.Parallel()

	var (
		pref    = legacyExperiment("pref", "pref", lo.ToPtr(StatusComplete), jan1, feb1)
		addon   = legacyExperiment("addon", "addon", lo.ToPtr(StatusComplete), jan1, feb1)
		nimbus  = nimbusExperiment("nimbus", StatusLive, jan1, never)
		nimbus2 = nimbusExperiment("nimbus-2", StatusComplete, jan1, feb1)
	)

	tests := []struct {
		name      string
		giveState []Experiment
		giveTypes []string
		want      []Experiment
	}{
		{
			name:      "single type keeps order",
			giveState: []Experiment{nimbus, pref, nimbus2, addon},
			giveTypes: []string{TypeV6},
			want:      []Experiment{nimbus, nimbus2},
		},
		{
			name:      "set of types",
			giveState: []Experiment{nimbus, pref, nimbus2, addon},
			giveTypes: []string{"addon", "pref"},
			want:      []Experiment{pref, addon},
		},
		{
			name:      "no types matches nothing",
			giveState: []Experiment{nimbus, pref},
			giveTypes: nil,
			want:      []Experiment{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ByType(tt.giveTypes...)(tt.giveState)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestByEverLaunched(t *testing.T) {
	t.Parallel()

	var (
		draft    = legacyExperiment("draft", "pref", lo.ToPtr("Draft"), never, never)
		unknown  = legacyExperiment("unknown", "pref", nil, never, never)
		live     = nimbusExperiment("live", StatusLive, jan1, never)
		complete = legacyExperiment("complete", "addon", lo.ToPtr(StatusComplete), jan1, feb1)
	)

	got := ByEverLaunched()([]Experiment{draft, unknown, live, complete})
	assert.Equal(t, []Experiment{unknown, live, complete}, got)
}

func TestBySlug(t *testing.T) {
	t.Parallel()

	var (
		legacy = legacyExperiment("foo", "pref", lo.ToPtr(StatusComplete), jan1, feb1)
		nimbus = nimbusExperiment("foo", StatusLive, jan1, never)
		other  = nimbusExperiment("bar", StatusLive, jan1, never)
	)

	tests := []struct {
		name     string
		giveSlug string
		want     []Experiment
	}{
		{
			name:     "matches experimenter slug and normandy slug",
			giveSlug: "foo",
			want:     []Experiment{legacy, nimbus},
		},
		{
			name:     "matches legacy normandy slug",
			giveSlug: "normandy-foo",
			want:     []Experiment{legacy},
		},
		{
			name:     "no match",
			giveSlug: "baz",
			want:     []Experiment{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := BySlug(tt.giveSlug)([]Experiment{legacy, nimbus, other})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestByStartedSince(t *testing.T) {
	t.Parallel()

	var (
		early    = legacyExperiment("early", "pref", lo.ToPtr(StatusComplete), jan1, feb1)
		onTime   = nimbusExperiment("on-time", StatusLive, feb1, never)
		late     = nimbusExperiment("late", StatusComplete, mar1, apr1)
		notYet   = legacyExperiment("not-yet", "pref", nil, never, never)
		draft    = legacyExperiment("draft", "pref", lo.ToPtr("Draft"), mar1, never)
		observed = []Experiment{early, onTime, late, notYet, draft}
	)

	got := ByStartedSince(feb1)(observed)
	assert.Equal(t, []string{"on-time", "late"}, slugs(got))
}

func TestByEndOnOrAfter(t *testing.T) {
	t.Parallel()

	var (
		ended    = legacyExperiment("ended", "pref", lo.ToPtr(StatusComplete), jan1, feb1)
		boundary = nimbusExperiment("boundary", StatusComplete, jan1, mar1)
		open     = nimbusExperiment("open", StatusLive, jan1, never)
		later    = nimbusExperiment("later", StatusLive, jan1, apr1)
		draft    = legacyExperiment("draft", "pref", lo.ToPtr("Draft"), jan1, apr1)
	)

	got := ByEndOnOrAfter(mar1)([]Experiment{ended, boundary, open, later, draft})
	assert.Equal(t, []string{"boundary", "open", "later"}, slugs(got))

	// open-ended experiments are kept no matter how far in the future the bound is
	got = ByEndOnOrAfter(mar1.AddDate(100, 0, 0))([]Experiment{ended, open})
	assert.Equal(t, []string{"open"}, slugs(got))
}
