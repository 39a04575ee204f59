package experimenter

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/smartcontractkit/experimenter-go/experiment"
)

// ExperimentV6 is an experiment served by the nimbus (v6) Experimenter API.
type ExperimentV6 struct {
	// Slug is the normandy slug.
	Slug               string
	Branches           []experiment.Branch
	StartDate          *time.Time
	EndDate            *time.Time
	ProposedEnrollment int
	ReferenceBranch    *string
	ProbeSets          []string

	// evaluatedAt is the time the status is computed against. Zero means the time of the
	// conversion.
	evaluatedAt time.Time
}

type branchV6JSON struct {
	Slug  *string `json:"slug"`
	Ratio *int    `json:"ratio"`
}

type experimentV6JSON struct {
	Slug               *string        `json:"slug"`
	Branches           []branchV6JSON `json:"branches"`
	StartDate          *string        `json:"startDate"`
	EndDate            *string        `json:"endDate"`
	ProposedEnrollment *int           `json:"proposedEnrollment"`
	ReferenceBranch    *string        `json:"referenceBranch"`
	ProbeSets          []string       `json:"probeSets"`
}

// DecodeExperimentV6 decodes a single record of the nimbus API. The status of the returned
// experiment is evaluated against now.
func DecodeExperimentV6(data []byte, now time.Time) (*ExperimentV6, error) {
	ex := &ExperimentV6{}
	if err := json.Unmarshal(data, ex); err != nil {
		return nil, err
	}
	ex.evaluatedAt = now

	return ex, nil
}

// UnmarshalJSON implements json.Unmarshaler. slug, branches and proposedEnrollment are
// required. Dates are ISO-8601 timestamps with a "Z" suffix or an explicit UTC offset.
func (e *ExperimentV6) UnmarshalJSON(data []byte) error {
	var raw experimentV6JSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	slug, err := requireField("slug", raw.Slug)
	if err != nil {
		return err
	}
	if raw.Branches == nil {
		return fmt.Errorf("%w %q", errMissingField, "branches")
	}
	enrollment, err := requireField("proposedEnrollment", raw.ProposedEnrollment)
	if err != nil {
		return err
	}

	branches := make([]experiment.Branch, 0, len(raw.Branches))
	for _, b := range raw.Branches {
		branchSlug, berr := requireField("slug", b.Slug)
		if berr != nil {
			return fmt.Errorf("branch: %w", berr)
		}
		ratio, berr := requireField("ratio", b.Ratio)
		if berr != nil {
			return fmt.Errorf("branch %s: %w", branchSlug, berr)
		}
		branches = append(branches, experiment.Branch{Slug: branchSlug, Ratio: ratio})
	}

	startDate, err := parseISOTime(raw.StartDate)
	if err != nil {
		return fmt.Errorf("startDate: %w", err)
	}
	endDate, err := parseISOTime(raw.EndDate)
	if err != nil {
		return fmt.Errorf("endDate: %w", err)
	}

	*e = ExperimentV6{
		Slug:               slug,
		Branches:           branches,
		StartDate:          startDate,
		EndDate:            endDate,
		ProposedEnrollment: enrollment,
		ReferenceBranch:    raw.ReferenceBranch,
		ProbeSets:          lo.Ternary(raw.ProbeSets == nil, []string{}, raw.ProbeSets),
	}

	return nil
}

// Version implements Schema.
func (e *ExperimentV6) Version() SchemaVersion { return SchemaV6 }

func (e *ExperimentV6) sealed() {}

// Status returns StatusLive when the experiment has no end date or ends at or after the
// evaluation time, and StatusComplete otherwise.
func (e *ExperimentV6) Status() string {
	now := e.evaluatedAt
	if now.IsZero() {
		now = time.Now()
	}

	if e.EndDate == nil || !e.EndDate.Before(now.UTC()) {
		return experiment.StatusLive
	}

	return experiment.StatusComplete
}

// ToExperiment converts the nimbus experiment to the canonical representation.
func (e *ExperimentV6) ToExperiment() experiment.Experiment {
	return experiment.Experiment{
		ExperimenterSlug:   nil,
		NormandySlug:       lo.ToPtr(e.Slug),
		Type:               experiment.TypeV6,
		Status:             lo.ToPtr(e.Status()),
		Branches:           slices.Clone(e.Branches),
		ProbeSets:          lo.Ternary(e.ProbeSets == nil, []string{}, slices.Clone(e.ProbeSets)),
		StartDate:          clonePtr(e.StartDate),
		EndDate:            clonePtr(e.EndDate),
		ProposedEnrollment: lo.ToPtr(e.ProposedEnrollment),
		ReferenceBranch:    clonePtr(e.ReferenceBranch),
		IsHighPopulation:   false,
	}
}

// parseISOTime parses an ISO-8601 timestamp to UTC. A "Z" suffix is equivalent to "+00:00".
// Timestamps without an offset are rejected.
func parseISOTime(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", *s, err)
	}
	t = t.UTC()

	return &t, nil
}
