package experimenter

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/smartcontractkit/experimenter-go/experiment"
)

// VariantV1 is a treatment arm of a legacy experiment.
type VariantV1 struct {
	IsControl bool
	Slug      string
	Ratio     int
}

type variantV1JSON struct {
	IsControl *bool   `json:"is_control"`
	Slug      *string `json:"slug"`
	Ratio     *int    `json:"ratio"`
}

// UnmarshalJSON implements json.Unmarshaler. slug and ratio are required.
func (v *VariantV1) UnmarshalJSON(data []byte) error {
	var raw variantV1JSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	slug, err := requireField("slug", raw.Slug)
	if err != nil {
		return fmt.Errorf("variant: %w", err)
	}
	ratio, err := requireField("ratio", raw.Ratio)
	if err != nil {
		return fmt.Errorf("variant %s: %w", slug, err)
	}

	*v = VariantV1{
		IsControl: lo.FromPtr(raw.IsControl),
		Slug:      slug,
		Ratio:     ratio,
	}

	return nil
}

// ExperimentV1 is an experiment served by the legacy (v1) Experimenter API.
type ExperimentV1 struct {
	// Slug is the experimenter slug.
	Slug      string
	Type      string
	Status    *string
	StartDate *time.Time
	EndDate   *time.Time
	// ProposedEnrollment is zero when the API did not provide one.
	ProposedEnrollment int
	Variants           []VariantV1
	NormandySlug       *string
	IsHighPopulation   bool
}

type experimentV1JSON struct {
	Slug               *string     `json:"slug"`
	Type               *string     `json:"type"`
	Status             *string     `json:"status"`
	StartDate          *float64    `json:"start_date"`
	EndDate            *float64    `json:"end_date"`
	ProposedEnrollment *float64    `json:"proposed_enrollment"`
	Variants           []VariantV1 `json:"variants"`
	NormandySlug       *string     `json:"normandy_slug"`
	IsHighPopulation   *bool       `json:"is_high_population"`
}

// DecodeExperimentV1 decodes a single record of the legacy API.
func DecodeExperimentV1(data []byte) (*ExperimentV1, error) {
	ex := &ExperimentV1{}
	if err := json.Unmarshal(data, ex); err != nil {
		return nil, err
	}

	return ex, nil
}

// UnmarshalJSON implements json.Unmarshaler. slug, type and variants are required. Dates are
// milliseconds since the Unix epoch.
func (e *ExperimentV1) UnmarshalJSON(data []byte) error {
	var raw experimentV1JSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	slug, err := requireField("slug", raw.Slug)
	if err != nil {
		return err
	}
	typ, err := requireField("type", raw.Type)
	if err != nil {
		return err
	}
	if raw.Variants == nil {
		return fmt.Errorf("%w %q", errMissingField, "variants")
	}

	var enrollment int
	if raw.ProposedEnrollment != nil {
		enrollment = int(*raw.ProposedEnrollment)
	}

	*e = ExperimentV1{
		Slug:               slug,
		Type:               typ,
		Status:             raw.Status,
		StartDate:          unixMillisToTime(raw.StartDate),
		EndDate:            unixMillisToTime(raw.EndDate),
		ProposedEnrollment: enrollment,
		Variants:           raw.Variants,
		NormandySlug:       raw.NormandySlug,
		IsHighPopulation:   lo.FromPtr(raw.IsHighPopulation),
	}

	return nil
}

// Version implements Schema.
func (e *ExperimentV1) Version() SchemaVersion { return SchemaV1 }

func (e *ExperimentV1) sealed() {}

// ToExperiment converts the legacy experiment to the canonical representation. Variants
// become branches, and the reference branch is the control variant when exactly one variant
// is marked as control.
func (e *ExperimentV1) ToExperiment() experiment.Experiment {
	branches := lo.Map(e.Variants, func(v VariantV1, _ int) experiment.Branch {
		return experiment.Branch{Slug: v.Slug, Ratio: v.Ratio}
	})

	var reference *string
	controls := lo.Filter(e.Variants, func(v VariantV1, _ int) bool { return v.IsControl })
	if len(controls) == 1 {
		reference = lo.ToPtr(controls[0].Slug)
	}

	return experiment.Experiment{
		ExperimenterSlug:   lo.ToPtr(e.Slug),
		NormandySlug:       clonePtr(e.NormandySlug),
		Type:               e.Type,
		Status:             clonePtr(e.Status),
		Branches:           branches,
		ProbeSets:          []string{},
		StartDate:          clonePtr(e.StartDate),
		EndDate:            clonePtr(e.EndDate),
		ProposedEnrollment: lo.ToPtr(e.ProposedEnrollment),
		ReferenceBranch:    reference,
		IsHighPopulation:   e.IsHighPopulation,
	}
}

// unixMillisToTime converts milliseconds since the Unix epoch to a UTC time. Fractional
// milliseconds are kept.
func unixMillisToTime(ms *float64) *time.Time {
	if ms == nil {
		return nil
	}

	whole, frac := math.Modf(*ms)
	t := time.UnixMilli(int64(whole)).Add(time.Duration(frac * float64(time.Millisecond))).UTC()

	return &t
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p

	return &v
}
