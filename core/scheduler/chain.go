package scheduler

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kilianp07/v2g-planner/core/milp"
	"github.com/kilianp07/v2g-planner/core/model"
)

// chainEps is the distance in kWh under which two states are the same.
const chainEps = 1e-9

// move is one action available in an hour, seen as a change of the state of
// charge.
type move struct {
	action model.Action
	// lo and hi bound the change of state of charge over the hour.
	lo, hi float64
	// unit is the cost of one kWh of change, fixed the cost of taking the
	// action at all. Both are expressed as a minimization.
	unit, fixed float64
	// floor is the lowest state the hour may start from.
	floor float64
}

// piece is a linear function of the state of charge on [lo, hi].
type piece struct {
	lo, hi float64
	at     float64 // value at lo
	slope  float64
}

func (p piece) value(e float64) float64 { return p.at + p.slope*(e-p.lo) }

func (p piece) point() bool { return p.hi-p.lo <= chainEps }

// curve is a piecewise linear cost-to-go. Pieces are sorted by lo and the
// curve is the pointwise minimum of the pieces covering a state; uncovered
// states are unreachable.
type curve []piece

func (c curve) eval(e float64) float64 {
	best := math.Inf(1)
	for _, p := range c {
		if e < p.lo-chainEps {
			break
		}
		if e <= p.hi+chainEps {
			best = math.Min(best, p.value(math.Min(math.Max(e, p.lo), p.hi)))
		}
	}
	return best
}

// through returns the cost of taking mv from each starting state and then
// following next. The result is clipped to [max(0, floor), capacity].
func (mv move) through(next curve, capacity float64) []piece {
	lo, hi := math.Max(0, mv.floor), capacity
	if lo > hi+chainEps {
		return nil
	}
	out := make([]piece, 0, 2*len(next))
	add := func(p piece) {
		a, b := math.Max(p.lo, lo), math.Min(p.hi, hi)
		if b < a-chainEps {
			return
		}
		if b < a {
			b = a
		}
		p.at += p.slope * (a - p.lo)
		p.lo, p.hi = a, b
		out = append(out, p)
	}
	for _, p := range next {
		end := p.value(p.hi)
		if mv.unit+p.slope >= 0 {
			// land as low as possible: on p.lo, then just above the start
			add(piece{lo: p.lo - mv.hi, hi: p.lo - mv.lo, at: mv.fixed + mv.unit*mv.hi + p.at, slope: -mv.unit})
			add(piece{lo: p.lo - mv.lo, hi: p.hi - mv.lo, at: mv.fixed + mv.unit*mv.lo + p.at, slope: p.slope})
		} else {
			add(piece{lo: p.lo - mv.hi, hi: p.hi - mv.hi, at: mv.fixed + mv.unit*mv.hi + p.at, slope: p.slope})
			add(piece{lo: p.hi - mv.hi, hi: p.hi - mv.lo, at: mv.fixed + mv.unit*mv.hi + end, slope: -mv.unit})
		}
	}
	return out
}

// best returns the cheapest landing state for mv from e along next, and its
// cost. ok is false when next cannot be reached.
func (mv move) best(e float64, next curve) (z, cost float64, ok bool) {
	if e < mv.floor-chainEps {
		return 0, 0, false
	}
	cost = math.Inf(1)
	for _, p := range next {
		from, to := math.Max(p.lo, e+mv.lo), math.Min(p.hi, e+mv.hi)
		if to < from-chainEps {
			continue
		}
		cand := to
		if mv.unit+p.slope >= 0 {
			cand = from
		}
		cand = math.Min(math.Max(cand, p.lo), p.hi)
		if v := mv.fixed + mv.unit*(cand-e) + p.value(cand); v < cost {
			z, cost, ok = cand, v, true
		}
	}
	return z, cost, ok
}

// envelope reduces overlapping pieces to their lower envelope.
func envelope(ps []piece) curve {
	if len(ps) == 0 {
		return nil
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].lo < ps[j].lo })
	xs := make([]float64, 0, 2*len(ps))
	for _, p := range ps {
		xs = append(xs, p.lo, p.hi)
	}
	sort.Float64s(xs)
	uniq := xs[:1]
	for _, x := range xs[1:] {
		if x > uniq[len(uniq)-1]+chainEps {
			uniq = append(uniq, x)
		}
	}

	var out curve
	var active []piece
	next := 0
	for i, x := range uniq {
		for next < len(ps) && ps[next].lo <= x+chainEps {
			active = append(active, ps[next])
			next++
		}
		kept := active[:0]
		for _, p := range active {
			if p.hi >= x-chainEps {
				kept = append(kept, p)
			}
		}
		active = kept

		at := math.Inf(1)
		for _, p := range active {
			at = math.Min(at, p.value(math.Min(math.Max(x, p.lo), p.hi)))
		}
		if !math.IsInf(at, 1) {
			out = append(out, piece{lo: x, hi: x, at: at})
		}
		if i+1 == len(uniq) {
			break
		}
		y := uniq[i+1]
		var cover []piece
		for _, p := range active {
			if p.hi >= y-chainEps {
				cover = append(cover, p)
			}
		}
		out = append(out, lowerLines(cover, x, y)...)
	}
	return simplify(out)
}

// lowerLines is the lower envelope on [x, y] of pieces that all cover it.
func lowerLines(cover []piece, x, y float64) []piece {
	if len(cover) == 0 {
		return nil
	}
	cur := cover[0]
	for _, p := range cover[1:] {
		pv, cv := p.value(x), cur.value(x)
		if pv < cv-valueTol(cv) || (pv <= cv+valueTol(cv) && p.slope < cur.slope) {
			cur = p
		}
	}
	var out []piece
	t := x
	for {
		nt, found := y, false
		var nxt piece
		for _, p := range cover {
			if p.slope >= cur.slope {
				continue
			}
			d := (p.value(t) - cur.value(t)) / (cur.slope - p.slope)
			tc := t + math.Max(d, 0)
			switch {
			case tc < nt-chainEps:
				nt, nxt, found = tc, p, true
			case found && math.Abs(tc-nt) <= chainEps && p.slope < nxt.slope:
				nxt = p
			}
		}
		if nt-t > chainEps {
			out = append(out, piece{lo: t, hi: nt, at: cur.value(t), slope: cur.slope})
		}
		if !found {
			return out
		}
		t, cur = nt, nxt
	}
}

// simplify drops points already matched by a neighbour and joins collinear
// neighbours.
func simplify(in curve) curve {
	out := make(curve, 0, len(in))
	for _, p := range in {
		if n := len(out); n > 0 {
			last := &out[n-1]
			touching := math.Abs(p.lo-last.hi) <= chainEps
			switch {
			case p.point() && touching && last.value(last.hi) <= p.at+valueTol(p.at):
				continue
			case last.point() && touching && p.at <= last.at+valueTol(last.at):
				*last = p
				continue
			case touching && !p.point() && !last.point() &&
				math.Abs(p.slope-last.slope) <= 1e-12 &&
				math.Abs(p.at-last.value(last.hi)) <= valueTol(p.at):
				last.hi = p.hi
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func valueTol(v float64) float64 { return 1e-9 * math.Max(1, math.Abs(v)) }

// chainSolver solves the charging model exactly by dynamic programming over
// the state of charge. The battery is a single chain of hourly states, so
// the cost-to-go of every hour is a piecewise linear function of the
// starting state; the action choice only takes the minimum of a few of them.
// It implements milp.Solver for the model built from the same Input.
type chainSolver struct {
	in Input
	f  formulation
	v  *decisionVars
}

func (c chainSolver) Solve(ctx context.Context, m *milp.Model) (*milp.Solution, error) {
	start := time.Now()
	in, p := c.in, c.in.Params
	n := in.Horizon
	target := in.TerminalEnergy()
	if target > p.BatteryCapacity+chainEps {
		return nil, milp.ErrInfeasible
	}

	curves := make([]curve, n+1)
	curves[n] = curve{{lo: target, hi: target}}
	pieces := 1
	for h := n - 1; h >= 0; h-- {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scheduler: solve stopped at hour %d: %w", h, err)
		}
		var ps []piece
		for _, mv := range c.f.moves(in, h) {
			ps = append(ps, mv.through(curves[h+1], p.BatteryCapacity)...)
		}
		curves[h] = envelope(ps)
		if len(curves[h]) == 0 {
			return nil, milp.ErrInfeasible
		}
		pieces += len(curves[h])
	}
	if math.IsInf(curves[0].eval(p.InitialSoC), 1) {
		return nil, milp.ErrInfeasible
	}

	x := make([]float64, m.NumVars())
	e := p.InitialSoC
	x[c.v.soc[0]] = e
	for h := 0; h < n; h++ {
		var (
			pick  move
			land  float64
			cost  = math.Inf(1)
			found bool
		)
		for _, mv := range c.f.moves(in, h) {
			z, v, ok := mv.best(e, curves[h+1])
			if ok && (!found || v < cost-valueTol(cost)) {
				pick, land, cost, found = mv, z, v, true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: no reachable action at hour %d from %g kWh", milp.ErrNumerical, h, e)
		}
		c.assign(x, h, pick, land-e)
		e = land
		x[c.v.soc[h+1]] = e
	}
	if err := m.Check(x, 1e-6); err != nil {
		return nil, fmt.Errorf("%w: %v", milp.ErrNumerical, err)
	}
	return &milp.Solution{
		X:         x,
		Objective: m.Evaluate(x),
		Stats:     milp.Stats{Nodes: pieces, Incumbents: 1, Elapsed: time.Since(start)},
	}, nil
}

func (c chainSolver) assign(x []float64, h int, mv move, delta float64) {
	v := c.v
	switch mv.action {
	case model.ActionSolar:
		x[v.actsSolar[h]] = 1
		x[v.solar[h]] = math.Max(delta, 0)
	case model.ActionGrid:
		x[v.actsGrid[h]] = 1
		x[v.grid[h]] = math.Max(delta, 0)
	case model.ActionDischarge:
		x[v.actsDischarge[h]] = 1
		x[v.discharge[h]] = math.Max(-delta, 0)
	default:
		x[v.actsIdle[h]] = 1
	}
}
