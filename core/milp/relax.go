package milp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	zeroCoef = 1e-12
	feasTol  = 1e-9
)

// row is a constraint rewritten as "<=" (eq=false) or "=" over the
// variables that are still free.
type row struct {
	idx  []int
	coef []float64
	eq   bool
	rhs  float64
}

// relaxation is the LP relaxation of one search node after presolve.
type relaxation struct {
	lb, ub []float64
	fixed  []bool
	rows   []row
	intTol float64
	isInt  []bool
}

// lpSimplex points to the LP solver. It can be overridden in tests to
// simulate solver failures.
var lpSimplex = func(c []float64, a mat.Matrix, b []float64, tol float64) (opt float64, x []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("simplex: %v", r)
		}
	}()
	return lp.Simplex(c, a, b, tol, nil)
}

func normalize(c Constraint) row {
	sum := make(map[int]float64, len(c.Terms))
	order := make([]int, 0, len(c.Terms))
	for _, t := range c.Terms {
		j := int(t.Var)
		if _, ok := sum[j]; !ok {
			order = append(order, j)
		}
		sum[j] += t.Coef
	}
	sign := 1.0
	if c.Sense == GreaterEq {
		sign = -1
	}
	r := row{eq: c.Sense == Equal, rhs: sign * c.RHS}
	for _, j := range order {
		a := sum[j]
		if math.Abs(a) < zeroCoef {
			continue
		}
		r.idx = append(r.idx, j)
		r.coef = append(r.coef, sign*a)
	}
	return r
}

// presolve applies the node bounds, substitutes fixed variables and turns
// singleton rows into bounds until nothing changes.
func presolve(m *Model, lb, ub []float64, intTol float64) (*relaxation, error) {
	n := len(m.vars)
	r := &relaxation{
		lb:     append([]float64(nil), lb...),
		ub:     append([]float64(nil), ub...),
		fixed:  make([]bool, n),
		intTol: intTol,
		isInt:  make([]bool, n),
	}
	for j, v := range m.vars {
		r.isInt[j] = v.integer
		if err := r.settle(j); err != nil {
			return nil, err
		}
	}
	rows := make([]row, 0, len(m.cons))
	for _, c := range m.cons {
		rows = append(rows, normalize(c))
	}
	for changed := true; changed; {
		changed = false
		kept := rows[:0]
		for _, rw := range rows {
			rw = r.substitute(rw)
			switch len(rw.idx) {
			case 0:
				tol := feasTol * math.Max(1, math.Abs(rw.rhs))
				if (rw.eq && math.Abs(rw.rhs) > tol) || (!rw.eq && rw.rhs < -tol) {
					return nil, ErrInfeasible
				}
			case 1:
				if err := r.tighten(rw); err != nil {
					return nil, err
				}
				changed = true
			default:
				kept = append(kept, rw)
			}
		}
		rows = kept
	}
	r.rows = rows
	return r, nil
}

func (r *relaxation) substitute(rw row) row {
	out := row{eq: rw.eq, rhs: rw.rhs}
	for k, j := range rw.idx {
		if r.fixed[j] {
			out.rhs -= rw.coef[k] * r.lb[j]
			continue
		}
		out.idx = append(out.idx, j)
		out.coef = append(out.coef, rw.coef[k])
	}
	return out
}

func (r *relaxation) tighten(rw row) error {
	j, a := rw.idx[0], rw.coef[0]
	v := rw.rhs / a
	tol := feasTol * math.Max(1, math.Abs(v))
	switch {
	case rw.eq:
		if v < r.lb[j]-tol || v > r.ub[j]+tol {
			return ErrInfeasible
		}
		v = math.Min(math.Max(v, r.lb[j]), r.ub[j])
		r.lb[j], r.ub[j] = v, v
	case a > 0:
		r.ub[j] = math.Min(r.ub[j], v)
	default:
		r.lb[j] = math.Max(r.lb[j], v)
	}
	return r.settle(j)
}

// settle rounds integer bounds and marks variables whose bounds meet.
func (r *relaxation) settle(j int) error {
	if r.isInt[j] {
		r.lb[j] = math.Ceil(r.lb[j] - r.intTol)
		r.ub[j] = math.Floor(r.ub[j] + r.intTol)
	}
	gap := r.ub[j] - r.lb[j]
	tol := feasTol * math.Max(1, math.Abs(r.lb[j]))
	if gap < -tol {
		return ErrInfeasible
	}
	if gap <= tol {
		r.ub[j] = r.lb[j]
		r.fixed[j] = true
	}
	return nil
}

// impliedUpper derives the upper bounds the remaining rows enforce on their
// own given the lower bounds. Declared upper bounds never feed the
// derivation, so a bound row is only dropped when the rows alone imply it.
func (r *relaxation) impliedUpper() []float64 {
	imp := make([]float64, len(r.lb))
	for j := range imp {
		imp[j] = math.Inf(1)
	}
	for pass := 0; pass < 4; pass++ {
		changed := false
		for _, rw := range r.rows {
			minAct, unknown := 0.0, 0
			for k, j := range rw.idx {
				a := rw.coef[k]
				switch {
				case a > 0:
					minAct += a * r.lb[j]
				case math.IsInf(imp[j], 1):
					unknown++
				default:
					minAct += a * imp[j]
				}
			}
			if unknown > 0 {
				continue
			}
			for k, j := range rw.idx {
				a := rw.coef[k]
				if a <= 0 {
					continue
				}
				bound := (rw.rhs-minAct)/a + r.lb[j]
				if bound < imp[j]-feasTol {
					imp[j] = bound
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return imp
}

// solve builds the standard form LP (shifted by the lower bounds, one slack
// per inequality) and runs the simplex. c must be a minimization.
func (r *relaxation) solve(c []float64, tol float64) ([]float64, error) {
	n := len(r.lb)
	col := make([]int, n)
	for j := range col {
		col[j] = -1
	}
	var active []int
	for _, rw := range r.rows {
		for _, j := range rw.idx {
			if col[j] < 0 {
				col[j] = len(active)
				active = append(active, j)
			}
		}
	}

	x := make([]float64, n)
	for j := 0; j < n; j++ {
		switch {
		case r.fixed[j]:
			x[j] = r.lb[j]
		case col[j] >= 0:
		case c[j] >= 0:
			x[j] = r.lb[j]
		case math.IsInf(r.ub[j], 1):
			return nil, ErrUnbounded
		default:
			x[j] = r.ub[j]
		}
	}
	if len(active) == 0 {
		return x, nil
	}

	imp := r.impliedUpper()
	var bounded []int
	for _, j := range active {
		if !math.IsInf(r.ub[j], 1) && imp[j] > r.ub[j]+feasTol {
			bounded = append(bounded, j)
		}
	}
	slacks := len(bounded)
	for _, rw := range r.rows {
		if !rw.eq {
			slacks++
		}
	}
	nRows := len(r.rows) + len(bounded)
	nCols := len(active) + slacks
	if nCols < nRows {
		return nil, fmt.Errorf("%w: %d rows exceed %d columns", ErrNumerical, nRows, nCols)
	}

	a := mat.NewDense(nRows, nCols, nil)
	b := make([]float64, nRows)
	cost := make([]float64, nCols)
	for k, j := range active {
		cost[k] = c[j]
	}
	s := len(active)
	for i, rw := range r.rows {
		rhs := rw.rhs
		for k, j := range rw.idx {
			a.Set(i, col[j], rw.coef[k])
			rhs -= rw.coef[k] * r.lb[j]
		}
		if !rw.eq {
			a.Set(i, s, 1)
			s++
		}
		b[i] = rhs
	}
	for k, j := range bounded {
		i := len(r.rows) + k
		a.Set(i, col[j], 1)
		a.Set(i, s, 1)
		s++
		b[i] = r.ub[j] - r.lb[j]
	}

	_, y, err := lpSimplex(cost, a, b, tol)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return nil, ErrInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return nil, ErrUnbounded
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrNumerical, err)
	}
	for k, j := range active {
		x[j] = r.lb[j] + math.Max(y[k], 0)
	}
	return x, nil
}
