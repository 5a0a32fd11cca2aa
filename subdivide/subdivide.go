// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package subdivide refines the exchange area of a partially obstructed
// polygon pair by adaptive subdivision into sub-patches.
//
// The first polygon carries the viewpoints of the visible fraction, so it is
// the one split: each level refines the quadrature while the second polygon
// stays whole and its shadows are cut out exactly.
//
// Every node of the refinement is a value record holding a sub-patch pair, its
// depth, the obstructions inherited from its parent and its current estimate.
// Nodes live on an explicit stack, so the depth bound is enforced in one place
// and pathological geometry cannot exhaust the call stack.
package subdivide

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/2dChan/viewfactor/contour"
	"github.com/2dChan/viewfactor/geom"
	"github.com/2dChan/viewfactor/visibility"
	"github.com/golang/geo/r3"
)

const maxDepthLimit = 24

// ErrInvalidConfig is returned by NewController for inconsistent settings.
var ErrInvalidConfig = errors.New("subdivide: invalid config")

// Evaluator computes unobstructed exchange areas.
type Evaluator interface {
	ExchangeArea(p1, p2 []r3.Vector) (contour.Result, error)
}

// Resolver classifies the obstruction of a polygon pair.
type Resolver interface {
	Classify(p1, p2 []r3.Vector, candidates []int) visibility.Classification
}

// State is the terminal state of a refinement.
type State int

const (
	// Exact means the pair needed no refinement: it is unobstructed or fully
	// blocked.
	Exact State = iota
	// Converged means every branch met the tolerance.
	Converged
	// ForceAccept means some branch hit the depth bound or the deadline and
	// its best estimate was used.
	ForceAccept
)

func (s State) String() string {
	switch s {
	case Exact:
		return "exact"
	case Converged:
		return "converged"
	case ForceAccept:
		return "force-accept"
	}
	return "unknown"
}

// Config configures a Controller.
type Config struct {
	// Tolerance bounds the change of a node estimate on refinement, relative
	// to the smaller area of the original pair and scaled by the node's share
	// of the pair, so that the accepted changes sum to at most the tolerance.
	Tolerance float64
	// MinDepth is the depth before which refinement never stops.
	MinDepth int
	// MaxDepth is the depth at which nodes are accepted as they are.
	MaxDepth int
}

// Outcome is the result of Controller.Solve.
type Outcome struct {
	// Value is the exchange area A1·F12.
	Value float64
	State State
	// Visibility is the classification of the whole pair.
	Visibility visibility.Visibility
	// Candidates counts the obstructions that may block the whole pair.
	Candidates int
	// Nodes counts the evaluated sub-patch pairs.
	Nodes int
	// Forced counts nodes accepted at the depth bound or the deadline.
	Forced int
	// Depth is the deepest level reached.
	Depth int
	// LineIntegralFailed reports that some contour integration did not
	// converge.
	LineIntegralFailed bool
}

// Controller runs refinements. It keeps no state between calls and is safe for
// concurrent use when its Evaluator and Resolver are.
type Controller struct {
	eval Evaluator
	res  Resolver
	cfg  Config
}

// NewController returns a Controller using eval for unobstructed values and res
// for obstruction tests.
func NewController(eval Evaluator, res Resolver, cfg Config) (*Controller, error) {
	if cfg.Tolerance <= 0 || math.IsNaN(cfg.Tolerance) {
		return nil, ErrInvalidConfig
	}
	if cfg.MinDepth < 0 || cfg.MaxDepth < cfg.MinDepth || cfg.MaxDepth > maxDepthLimit {
		return nil, ErrInvalidConfig
	}
	return &Controller{eval: eval, res: res, cfg: cfg}, nil
}

// node is one sub-patch pair awaiting refinement.
type node struct {
	p1, p2     []r3.Vector
	depth      int
	candidates []int
	estimate   float64
	exact      bool
}

// Solve returns the exchange area from p1 to p2 considering the given
// obstruction candidates. When ctx is done, pending nodes are accepted with
// their current estimates.
func (c *Controller) Solve(ctx context.Context, p1, p2 []r3.Vector, candidates []int) (Outcome, error) {
	var out Outcome
	root, vis, err := c.evaluate(p1, p2, 0, candidates, &out)
	if err != nil {
		return Outcome{}, err
	}
	out.Visibility = vis
	out.Candidates = len(root.candidates)
	out.State = Exact
	if root.exact {
		out.Value = root.estimate
		return out, nil
	}

	epsAF := c.cfg.Tolerance * math.Min(geom.Area(p1), geom.Area(p2))
	area1 := geom.Area(p1)
	out.State = Converged
	var total float64
	stack := []node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out.Depth = max(out.Depth, n.depth)

		if n.depth >= c.cfg.MaxDepth || expired(ctx) {
			total += n.estimate
			out.Forced++
			out.State = ForceAccept
			continue
		}

		children, err := c.split(n, &out)
		if err != nil {
			return Outcome{}, err
		}
		var refined float64
		for _, ch := range children {
			refined += ch.estimate
		}
		if n.depth >= c.cfg.MinDepth && math.Abs(refined-n.estimate) <= epsAF*geom.Area(n.p1)/area1 {
			total += refined
			continue
		}
		for _, ch := range children {
			if ch.exact {
				total += ch.estimate
			} else {
				stack = append(stack, ch)
			}
		}
	}
	out.Value = math.Max(total, 0)
	return out, nil
}

// expired reports whether ctx is canceled or past its deadline. The deadline
// is checked directly since the context timer may not have fired yet.
func expired(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	d, ok := ctx.Deadline()
	return ok && !time.Now().Before(d)
}

// split subdivides the first polygon of n and evaluates the children.
func (c *Controller) split(n node, out *Outcome) ([]node, error) {
	var children []node
	for _, q := range geom.Subdivide(n.p1) {
		ch, _, err := c.evaluate(q, n.p2, n.depth+1, n.candidates, out)
		if err != nil {
			return nil, err
		}
		children = append(children, ch)
	}
	return children, nil
}

// evaluate classifies a sub-patch pair and computes its first estimate.
func (c *Controller) evaluate(p1, p2 []r3.Vector, depth int, candidates []int, out *Outcome) (node, visibility.Visibility, error) {
	out.Nodes++
	cls := c.res.Classify(p1, p2, candidates)
	n := node{p1: p1, p2: p2, depth: depth, candidates: cls.Candidates}
	if cls.Visibility == visibility.Full {
		n.exact = true
		return n, cls.Visibility, nil
	}

	r, err := c.eval.ExchangeArea(p1, p2)
	if err != nil {
		return node{}, cls.Visibility, err
	}
	if !r.Converged {
		out.LineIntegralFailed = true
	}
	n.estimate = r.AF
	if cls.Visibility == visibility.None {
		n.exact = true
		return n, cls.Visibility, nil
	}
	n.estimate *= cls.Visible
	return n, cls.Visibility, nil
}
