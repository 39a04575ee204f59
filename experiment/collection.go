package experiment

import (
	"time"

	"github.com/samber/lo"
)

// Collection is an immutable, ordered list of experiments. Every query returns a new
// Collection and leaves the receiver untouched.
type Collection struct {
	experiments []Experiment
}

// NewCollection returns a Collection holding copies of the given experiments, in order.
func NewCollection(experiments ...Experiment) *Collection {
	return &Collection{experiments: cloneAll(experiments)}
}

// Experiments returns a copy of the experiments in the collection.
func (c *Collection) Experiments() []Experiment {
	return cloneAll(c.experiments)
}

// Len returns the number of experiments in the collection.
func (c *Collection) Len() int {
	return len(c.experiments)
}

// Filter applies the filters in order and returns a collection with the experiments that
// passed all of them.
func (c *Collection) Filter(filters ...FilterFunc) *Collection {
	filtered := c.experiments
	for _, filter := range filters {
		filtered = filter(filtered)
	}

	return &Collection{experiments: cloneAll(filtered)}
}

// OfType keeps experiments whose type is any of the provided types.
func (c *Collection) OfType(types ...string) *Collection {
	return c.Filter(ByType(types...))
}

// EverLaunched keeps experiments that are live, complete, or have no status.
func (c *Collection) EverLaunched() *Collection {
	return c.Filter(ByEverLaunched())
}

// WithSlug keeps experiments whose experimenter slug or normandy slug matches.
func (c *Collection) WithSlug(slug string) *Collection {
	return c.Filter(BySlug(slug))
}

// StartedSince keeps launched experiments that started at or after since.
// Experiments without a start date are dropped.
func (c *Collection) StartedSince(since time.Time) *Collection {
	return c.Filter(ByEverLaunched(), ByStartedSince(since))
}

// EndOnOrAfter keeps launched experiments that end at or after the given time, including
// experiments that have no end date yet.
func (c *Collection) EndOnOrAfter(after time.Time) *Collection {
	return c.Filter(ByEverLaunched(), ByEndOnOrAfter(after))
}

// Where keeps experiments for which the compiled expression evaluates to true. It fails on
// the first experiment the expression cannot be evaluated against.
// See CompileExpression for the names available to the expression.
func (c *Collection) Where(e *Expression) (*Collection, error) {
	kept := make([]Experiment, 0, len(c.experiments))
	for _, ex := range c.experiments {
		matched, err := e.Match(ex)
		if err != nil {
			return nil, err
		}
		if matched {
			kept = append(kept, ex)
		}
	}

	return &Collection{experiments: cloneAll(kept)}, nil
}

func cloneAll(experiments []Experiment) []Experiment {
	return lo.Map(experiments, func(ex Experiment, _ int) Experiment {
		return ex.Clone()
	})
}
