package experiment

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/samber/lo"
)

// Expression is a compiled boolean expression evaluated against single experiments.
type Expression struct {
	source  string
	program *vm.Program
}

// exprEnv is the view of an Experiment exposed to expressions. Optional values are flattened:
// missing strings are empty and missing dates are nil.
type exprEnv struct {
	ExperimenterSlug   string   `expr:"experimenterSlug"`
	NormandySlug       string   `expr:"normandySlug"`
	Slug               string   `expr:"slug"`
	Type               string   `expr:"type"`
	Status             string   `expr:"status"`
	Branches           []string `expr:"branches"`
	ProbeSets          []string `expr:"probeSets"`
	StartDate          any      `expr:"startDate"`
	EndDate            any      `expr:"endDate"`
	ProposedEnrollment int      `expr:"proposedEnrollment"`
	ReferenceBranch    string   `expr:"referenceBranch"`
	IsHighPopulation   bool     `expr:"isHighPopulation"`
}

// CompileExpression compiles src into an Expression. The expression must evaluate to a
// boolean and may reference experimenterSlug, normandySlug, slug, type, status, branches
// (branch slugs), probeSets, startDate, endDate, proposedEnrollment, referenceBranch and
// isHighPopulation.
//
//	e, err := CompileExpression(`type == "v6" && "control" in branches`)
func CompileExpression(src string) (*Expression, error) {
	program, err := expr.Compile(src, expr.Env(exprEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression %q: %w", src, err)
	}

	return &Expression{source: src, program: program}, nil
}

// String returns the source of the expression.
func (e *Expression) String() string {
	return e.source
}

// Match evaluates the expression against the experiment.
func (e *Expression) Match(ex Experiment) (bool, error) {
	out, err := expr.Run(e.program, newExprEnv(ex))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate expression %q for %s: %w", e.source, ex.Slug(), err)
	}

	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %T, expected bool", e.source, out)
	}

	return matched, nil
}

// Filter returns a FilterFunc keeping the experiments the expression matches. Experiments
// for which the evaluation fails are dropped; use Collection.Where to surface those errors.
func (e *Expression) Filter() FilterFunc {
	return predicateFilter(func(ex Experiment) bool {
		matched, err := e.Match(ex)

		return err == nil && matched
	})
}

// ByExpression compiles src and returns it as a FilterFunc.
func ByExpression(src string) (FilterFunc, error) {
	e, err := CompileExpression(src)
	if err != nil {
		return nil, err
	}

	return e.Filter(), nil
}

func newExprEnv(ex Experiment) exprEnv {
	env := exprEnv{
		ExperimenterSlug:   lo.FromPtr(ex.ExperimenterSlug),
		NormandySlug:       lo.FromPtr(ex.NormandySlug),
		Slug:               ex.Slug(),
		Type:               ex.Type,
		Status:             lo.FromPtr(ex.Status),
		Branches:           lo.Map(ex.Branches, func(b Branch, _ int) string { return b.Slug }),
		ProbeSets:          ex.ProbeSets,
		ProposedEnrollment: lo.FromPtr(ex.ProposedEnrollment),
		ReferenceBranch:    lo.FromPtr(ex.ReferenceBranch),
		IsHighPopulation:   ex.IsHighPopulation,
	}
	if ex.StartDate != nil {
		env.StartDate = *ex.StartDate
	}
	if ex.EndDate != nil {
		env.EndDate = *ex.EndDate
	}

	return env
}
