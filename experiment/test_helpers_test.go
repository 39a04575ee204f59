package experiment

import (
	"time"

	"github.com/samber/lo"
)

var (
	jan1  = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	feb1  = time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	mar1  = time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	apr1  = time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC)
	never = time.Time{}
)

// legacyExperiment builds an experiment shaped like a converted V1 record.
func legacyExperiment(slug, typ string, status *string, start, end time.Time) Experiment {
	ex := Experiment{
		ExperimenterSlug:   lo.ToPtr(slug),
		NormandySlug:       lo.ToPtr("normandy-" + slug),
		Type:               typ,
		Status:             status,
		Branches:           []Branch{{Slug: "control", Ratio: 1}, {Slug: "treatment", Ratio: 1}},
		ProbeSets:          []string{},
		ProposedEnrollment: lo.ToPtr(7),
		ReferenceBranch:    lo.ToPtr("control"),
	}
	if !start.IsZero() {
		ex.StartDate = lo.ToPtr(start)
	}
	if !end.IsZero() {
		ex.EndDate = lo.ToPtr(end)
	}

	return ex
}

// nimbusExperiment builds an experiment shaped like a converted V6 record.
func nimbusExperiment(slug string, status string, start, end time.Time) Experiment {
	ex := Experiment{
		NormandySlug:       lo.ToPtr(slug),
		Type:               TypeV6,
		Status:             lo.ToPtr(status),
		Branches:           []Branch{{Slug: "a", Ratio: 2}, {Slug: "b", Ratio: 1}},
		ProbeSets:          []string{"probe-1"},
		ProposedEnrollment: lo.ToPtr(14),
		ReferenceBranch:    lo.ToPtr("a"),
	}
	if !start.IsZero() {
		ex.StartDate = lo.ToPtr(start)
	}
	if !end.IsZero() {
		ex.EndDate = lo.ToPtr(end)
	}

	return ex
}

func slugs(experiments []Experiment) []string {
	return lo.Map(experiments, func(ex Experiment, _ int) string { return ex.Slug() })
}
