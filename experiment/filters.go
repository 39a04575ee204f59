package experiment

import (
	"time"

	"github.com/samber/lo"
)

// FilterFunc narrows down a list of experiments. Implementations must not modify the input
// and must preserve the relative order of the experiments they keep.
//
// Filters are composable through Collection.Filter. For example, to find all launched V6
// experiments which started this year:
//
//	launched := collection.Filter(
//		ByType(TypeV6),
//		ByStartedSince(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
//	)
type FilterFunc func(experiments []Experiment) []Experiment

var _ FilterFunc = ByType()
var _ FilterFunc = ByEverLaunched()
var _ FilterFunc = BySlug("")
var _ FilterFunc = ByStartedSince(time.Time{})
var _ FilterFunc = ByEndOnOrAfter(time.Time{})

// predicateFilter returns a filter that keeps the experiments for which the predicate returns
// true.
func predicateFilter(predicate func(ex Experiment) bool) FilterFunc {
	return func(experiments []Experiment) []Experiment {
		return lo.Filter(experiments, func(ex Experiment, _ int) bool {
			return predicate(ex)
		})
	}
}

// ByType returns a filter that keeps experiments whose type is one of the provided types.
func ByType(types ...string) FilterFunc {
	return predicateFilter(func(ex Experiment) bool {
		return lo.Contains(types, ex.Type)
	})
}

// ByEverLaunched returns a filter that keeps experiments which are live, complete, or whose
// status is unknown. An unknown status is treated as possibly launched.
func ByEverLaunched() FilterFunc {
	return predicateFilter(everLaunched)
}

// BySlug returns a filter that keeps experiments whose experimenter slug or normandy slug
// equals the provided slug.
func BySlug(slug string) FilterFunc {
	return predicateFilter(func(ex Experiment) bool {
		return (ex.ExperimenterSlug != nil && *ex.ExperimenterSlug == slug) ||
			(ex.NormandySlug != nil && *ex.NormandySlug == slug)
	})
}

// ByStartedSince returns a filter that keeps launched experiments with a known start date at
// or after since.
func ByStartedSince(since time.Time) FilterFunc {
	return predicateFilter(func(ex Experiment) bool {
		return everLaunched(ex) && ex.StartDate != nil && !ex.StartDate.Before(since)
	})
}

// ByEndOnOrAfter returns a filter that keeps launched experiments that end at or after the
// provided time. Experiments without an end date are always kept.
func ByEndOnOrAfter(after time.Time) FilterFunc {
	return predicateFilter(func(ex Experiment) bool {
		return everLaunched(ex) && (ex.EndDate == nil || !ex.EndDate.Before(after))
	})
}

func everLaunched(ex Experiment) bool {
	return ex.Status == nil || *ex.Status == StatusLive || *ex.Status == StatusComplete
}
