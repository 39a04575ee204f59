// Package experiment defines the canonical representation of an experiment described by
// Experimenter, regardless of the API version it was fetched from, and an immutable
// collection type with composable filters for querying them.
package experiment

import (
	"slices"
	"time"
)

const (
	// TypeV6 is the type assigned to every experiment sourced from the V6 (nimbus) API.
	TypeV6 = "v6"

	// StatusLive is the status of an experiment that is currently enrolling or observing.
	StatusLive = "Live"
	// StatusComplete is the status of an experiment that has ended.
	StatusComplete = "Complete"
)

// Branch is one arm of an experiment and its relative traffic weight.
type Branch struct {
	Slug  string `json:"slug" yaml:"slug" toml:"slug"`
	Ratio int    `json:"ratio" yaml:"ratio" toml:"ratio"`
}

// Experiment is the common Experimenter experiment representation.
//
// Values are produced by converting one of the source schemas (see the experimenter package)
// and must be treated as read-only. Use Clone when a mutable copy is needed.
type Experiment struct {
	// ExperimenterSlug is the slug generated by Experimenter for V1 experiments; nil for V6.
	ExperimenterSlug *string `json:"experimenter_slug" yaml:"experimenter_slug" toml:"experimenter_slug,omitempty"`
	// NormandySlug is the V1 normandy_slug (nil until shipped) or the V6 slug.
	NormandySlug *string `json:"normandy_slug" yaml:"normandy_slug" toml:"normandy_slug,omitempty"`
	// Type is the V1 experiment type; always TypeV6 for V6 experiments.
	Type string `json:"type" yaml:"type" toml:"type"`
	// Status is the V1 status, or StatusLive / StatusComplete derived from the V6 end date.
	Status *string `json:"status" yaml:"status" toml:"status,omitempty"`
	// Branches are kept in source order.
	Branches []Branch `json:"branches" yaml:"branches" toml:"branches"`
	// ProbeSets is always empty for V1 experiments.
	ProbeSets []string `json:"probe_sets" yaml:"probe_sets" toml:"probe_sets"`
	// StartDate and EndDate are UTC; nil means not yet determined.
	StartDate *time.Time `json:"start_date" yaml:"start_date" toml:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date" yaml:"end_date" toml:"end_date,omitempty"`
	// ProposedEnrollment is the planned enrollment duration in days.
	ProposedEnrollment *int `json:"proposed_enrollment" yaml:"proposed_enrollment" toml:"proposed_enrollment,omitempty"`
	// ReferenceBranch is the slug of the control branch, nil when it cannot be determined.
	ReferenceBranch *string `json:"reference_branch" yaml:"reference_branch" toml:"reference_branch,omitempty"`
	// IsHighPopulation is only ever set by V1 experiments.
	IsHighPopulation bool `json:"is_high_population" yaml:"is_high_population" toml:"is_high_population"`
}

// Slug returns the most specific identifier of the experiment: the normandy slug when it is
// known, otherwise the experimenter slug.
func (e Experiment) Slug() string {
	if e.NormandySlug != nil {
		return *e.NormandySlug
	}
	if e.ExperimenterSlug != nil {
		return *e.ExperimenterSlug
	}

	return ""
}

// ControlBranch returns the branch referenced by ReferenceBranch. The second return value is
// false if there is no reference branch or it does not name one of the branches.
func (e Experiment) ControlBranch() (Branch, bool) {
	if e.ReferenceBranch == nil {
		return Branch{}, false
	}

	idx := slices.IndexFunc(e.Branches, func(b Branch) bool {
		return b.Slug == *e.ReferenceBranch
	})
	if idx < 0 {
		return Branch{}, false
	}

	return e.Branches[idx], true
}

// Clone returns a deep copy of the experiment which shares no memory with the receiver.
func (e Experiment) Clone() Experiment {
	return Experiment{
		ExperimenterSlug:   clonePtr(e.ExperimenterSlug),
		NormandySlug:       clonePtr(e.NormandySlug),
		Type:               e.Type,
		Status:             clonePtr(e.Status),
		Branches:           slices.Clone(e.Branches),
		ProbeSets:          slices.Clone(e.ProbeSets),
		StartDate:          clonePtr(e.StartDate),
		EndDate:            clonePtr(e.EndDate),
		ProposedEnrollment: clonePtr(e.ProposedEnrollment),
		ReferenceBranch:    clonePtr(e.ReferenceBranch),
		IsHighPopulation:   e.IsHighPopulation,
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p

	return &v
}
