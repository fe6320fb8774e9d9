package emit

import (
	"github.com/teranos/typeforge/classify"
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/ir"
	"github.com/teranos/typeforge/naming"
	"github.com/teranos/typeforge/promote"
)

// Prepared is the target-independent part of a compilation: the frozen,
// promoted graph and the enum shapes rendered from it. It is shared
// read-only by every target.
type Prepared struct {
	Graph      *ir.Graph
	Shapes     *classify.Shapes
	Promotions promote.Promotions
	External   []string
}

// Prepare normalizes and validates g, puts declarations in dependency order,
// classifies its enums, then promotes anonymous variants. Classification runs
// before promotion so that a discriminant collision is reported first.
func Prepare(g *ir.Graph) (*Prepared, error) {
	normalized := ir.Normalize(g)
	external, err := ir.Validate(normalized)
	if err != nil {
		return nil, err
	}

	ordered := ir.Sort(normalized)

	shapes, err := classify.ClassifyGraph(ordered)
	if err != nil {
		return nil, err
	}

	res, err := promote.Promote(ordered)
	if err != nil {
		return nil, err
	}

	return &Prepared{
		Graph:      res.Graph,
		Shapes:     shapes.Promoted(res.Promotions),
		Promotions: res.Promotions,
		External:   external,
	}, nil
}

// ForTarget resolves names for one target and assembles its Input.
func (p *Prepared) ForTarget(rules naming.Rules, nopts naming.Options, opts Options) (*Input, error) {
	if !p.Graph.Frozen() {
		return nil, errors.AssertionFailedf("prepared graph must be frozen")
	}
	names, err := naming.ResolveGraph(p.Graph, rules, nopts)
	if err != nil {
		return nil, err
	}
	return &Input{
		Graph:      p.Graph,
		Shapes:     p.Shapes,
		Promotions: p.Promotions,
		Names:      names,
		Options:    opts,
	}, nil
}
