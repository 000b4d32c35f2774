package milp

import (
	"fmt"
	"math"
)

// Sense is the relation of a constraint row to its right-hand side.
type Sense int

const (
	LessEq Sense = iota
	Equal
	GreaterEq
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case Equal:
		return "="
	case GreaterEq:
		return ">="
	default:
		return "?"
	}
}

// Direction selects whether the objective is minimized or maximized.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

// Var identifies a model variable.
type Var int

// Term is a coefficient applied to a variable.
type Term struct {
	Var  Var
	Coef float64
}

// T is shorthand for building a Term.
func T(coef float64, v Var) Term { return Term{Var: v, Coef: coef} }

// Constraint is a linear row: sum(terms) <sense> RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

type variable struct {
	name    string
	lb, ub  float64
	integer bool
	obj     float64
}

// Model is a mixed-integer linear program under construction. A Model is not
// safe for concurrent mutation; build one per solve.
type Model struct {
	Name string

	vars []variable
	cons []Constraint
	dir  Direction
	// constant offset added to the objective value.
	offset float64
}

// NewModel returns an empty minimization model.
func NewModel(name string) *Model { return &Model{Name: name} }

// AddVar adds a continuous variable with bounds [lb, ub].
func (m *Model) AddVar(name string, lb, ub float64) Var {
	m.vars = append(m.vars, variable{name: name, lb: lb, ub: ub})
	return Var(len(m.vars) - 1)
}

// AddBinary adds an integer variable restricted to {0, 1}.
func (m *Model) AddBinary(name string) Var {
	return m.AddInteger(name, 0, 1)
}

// AddInteger adds an integer variable with bounds [lb, ub].
func (m *Model) AddInteger(name string, lb, ub float64) Var {
	m.vars = append(m.vars, variable{name: name, lb: lb, ub: ub, integer: true})
	return Var(len(m.vars) - 1)
}

// AddConstraint appends a row. Terms referring to the same variable are
// summed by the solver.
func (m *Model) AddConstraint(name string, sense Sense, rhs float64, terms ...Term) {
	cp := make([]Term, len(terms))
	copy(cp, terms)
	m.cons = append(m.cons, Constraint{Name: name, Terms: cp, Sense: sense, RHS: rhs})
}

// SetObjective replaces the objective. Repeated terms for a variable add up.
func (m *Model) SetObjective(dir Direction, terms ...Term) {
	m.dir = dir
	for i := range m.vars {
		m.vars[i].obj = 0
	}
	m.offset = 0
	for _, t := range terms {
		m.vars[t.Var].obj += t.Coef
	}
}

// AddObjectiveConstant shifts the objective by c.
func (m *Model) AddObjectiveConstant(c float64) { m.offset += c }

// Direction reports whether the objective is minimized or maximized.
func (m *Model) Direction() Direction { return m.dir }

// NumVars returns the number of variables.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints returns the number of rows.
func (m *Model) NumConstraints() int { return len(m.cons) }

// Constraints returns the rows of the model.
func (m *Model) Constraints() []Constraint { return m.cons }

// Bounds returns the declared bounds of v.
func (m *Model) Bounds(v Var) (lb, ub float64) { return m.vars[v].lb, m.vars[v].ub }

// IsInteger reports whether v is integral.
func (m *Model) IsInteger(v Var) bool { return m.vars[v].integer }

// VarName returns the name given to v.
func (m *Model) VarName(v Var) string { return m.vars[v].name }

// Objective returns the objective coefficient of v.
func (m *Model) Objective(v Var) float64 { return m.vars[v].obj }

// Evaluate computes the objective value at x.
func (m *Model) Evaluate(x []float64) float64 {
	val := m.offset
	for j, v := range m.vars {
		val += v.obj * x[j]
	}
	return val
}

// minimizeCosts returns objective coefficients expressed as a minimization.
func (m *Model) minimizeCosts() []float64 {
	c := make([]float64, len(m.vars))
	for j, v := range m.vars {
		c[j] = v.obj
		if m.dir == Maximize {
			c[j] = -v.obj
		}
	}
	return c
}

// validate rejects models the solver cannot handle.
func (m *Model) validate() error {
	for j, v := range m.vars {
		if math.IsInf(v.lb, 0) || math.IsNaN(v.lb) || math.IsNaN(v.ub) {
			return fmt.Errorf("milp: variable %s needs a finite lower bound", m.vars[j].name)
		}
		if math.IsNaN(v.obj) || math.IsInf(v.obj, 0) {
			return fmt.Errorf("milp: variable %s has a non-finite objective coefficient", v.name)
		}
	}
	for _, c := range m.cons {
		if math.IsNaN(c.RHS) || math.IsInf(c.RHS, 0) {
			return fmt.Errorf("milp: constraint %s has a non-finite right-hand side", c.Name)
		}
		for _, t := range c.Terms {
			if int(t.Var) < 0 || int(t.Var) >= len(m.vars) {
				return fmt.Errorf("milp: constraint %s references unknown variable %d", c.Name, t.Var)
			}
			if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
				return fmt.Errorf("milp: constraint %s has a non-finite coefficient", c.Name)
			}
		}
	}
	return nil
}

// Check verifies that x satisfies every bound, row and integrality
// requirement within tol. It returns the first violation found.
func (m *Model) Check(x []float64, tol float64) error {
	if len(x) != len(m.vars) {
		return fmt.Errorf("milp: solution has %d values, model has %d variables", len(x), len(m.vars))
	}
	for j, v := range m.vars {
		if x[j] < v.lb-tol || x[j] > v.ub+tol {
			return fmt.Errorf("milp: %s=%g outside [%g, %g]", v.name, x[j], v.lb, v.ub)
		}
		if v.integer && math.Abs(x[j]-math.Round(x[j])) > tol {
			return fmt.Errorf("milp: %s=%g is not integral", v.name, x[j])
		}
	}
	for _, c := range m.cons {
		lhs := 0.0
		for _, t := range c.Terms {
			lhs += t.Coef * x[t.Var]
		}
		switch c.Sense {
		case LessEq:
			if lhs > c.RHS+tol {
				return fmt.Errorf("milp: %s violated: %g > %g", c.Name, lhs, c.RHS)
			}
		case GreaterEq:
			if lhs < c.RHS-tol {
				return fmt.Errorf("milp: %s violated: %g < %g", c.Name, lhs, c.RHS)
			}
		case Equal:
			if math.Abs(lhs-c.RHS) > tol {
				return fmt.Errorf("milp: %s violated: %g != %g", c.Name, lhs, c.RHS)
			}
		}
	}
	return nil
}
