package scheduler

import (
	"fmt"

	"github.com/kilianp07/v2g-planner/core/milp"
	"github.com/kilianp07/v2g-planner/core/model"
)

// decisionVars indexes the model variables by hour.
type decisionVars struct {
	solar, grid, discharge []milp.Var

	actsSolar, actsGrid, actsDischarge []milp.Var
	// actsIdle is nil unless Params.AllowIdle is set.
	actsIdle []milp.Var

	// soc has Horizon+1 entries: the state at the start of each hour and at
	// the end of the horizon.
	soc []milp.Var
}

// formulation supplies what differs between planning modes. The shared
// skeleton is built once by buildModel.
type formulation interface {
	name() string
	// floorEnergy is the state of charge below which discharging stops.
	floorEnergy(in Input) float64
	terminal(m *milp.Model, in Input, v *decisionVars)
	restrict(m *milp.Model, in Input, v *decisionVars)
	objective(in Input, v *decisionVars) (milp.Direction, []milp.Term)
	// moves lists the actions of hour h with their minimization costs, in
	// the order ties are broken.
	moves(in Input, h int) []move
}

func formulationFor(mode model.Mode) (formulation, error) {
	switch mode {
	case model.ModeCost:
		return costFormulation{}, nil
	case model.ModeEco:
		return ecoFormulation{}, nil
	default:
		return nil, invalid("mode", "unknown mode %d", int(mode))
	}
}

func buildModel(in Input, f formulation) (*milp.Model, *decisionVars) {
	n := in.Horizon
	p := in.Params
	m := milp.NewModel("ev_" + f.name())
	v := &decisionVars{
		solar:         make([]milp.Var, n),
		grid:          make([]milp.Var, n),
		discharge:     make([]milp.Var, n),
		actsSolar:     make([]milp.Var, n),
		actsGrid:      make([]milp.Var, n),
		actsDischarge: make([]milp.Var, n),
		soc:           make([]milp.Var, n+1),
	}
	if p.AllowIdle {
		v.actsIdle = make([]milp.Var, n)
	}
	for h := 0; h < n; h++ {
		v.solar[h] = m.AddVar(fmt.Sprintf("cPV_%d", h), 0, in.Solar[h])
		v.grid[h] = m.AddVar(fmt.Sprintf("cG_%d", h), 0, p.MaxChargeRate)
		v.discharge[h] = m.AddVar(fmt.Sprintf("dG_%d", h), 0, p.MaxDischargeRate)
		v.actsSolar[h] = m.AddBinary(fmt.Sprintf("yPV_%d", h))
		v.actsGrid[h] = m.AddBinary(fmt.Sprintf("yG_%d", h))
		v.actsDischarge[h] = m.AddBinary(fmt.Sprintf("yD_%d", h))
		if v.actsIdle != nil {
			v.actsIdle[h] = m.AddBinary(fmt.Sprintf("yI_%d", h))
		}
	}
	for h := 0; h <= n; h++ {
		v.soc[h] = m.AddVar(fmt.Sprintf("E_%d", h), 0, p.BatteryCapacity)
	}

	m.AddConstraint("initial_soc", milp.Equal, p.InitialSoC, milp.T(1, v.soc[0]))
	floor := f.floorEnergy(in)
	for h := 0; h < n; h++ {
		m.AddConstraint(fmt.Sprintf("balance_%d", h), milp.Equal, 0,
			milp.T(1, v.soc[h+1]), milp.T(-1, v.soc[h]),
			milp.T(-1, v.solar[h]), milp.T(-1, v.grid[h]), milp.T(1, v.discharge[h]))

		m.AddConstraint(fmt.Sprintf("link_solar_%d", h), milp.LessEq, 0,
			milp.T(1, v.solar[h]), milp.T(-in.Solar[h], v.actsSolar[h]))
		m.AddConstraint(fmt.Sprintf("link_grid_%d", h), milp.LessEq, 0,
			milp.T(1, v.grid[h]), milp.T(-p.MaxChargeRate, v.actsGrid[h]))
		m.AddConstraint(fmt.Sprintf("link_discharge_%d", h), milp.LessEq, 0,
			milp.T(1, v.discharge[h]), milp.T(-p.MaxDischargeRate, v.actsDischarge[h]))

		one := []milp.Term{milp.T(1, v.actsSolar[h]), milp.T(1, v.actsGrid[h]), milp.T(1, v.actsDischarge[h])}
		if v.actsIdle != nil {
			one = append(one, milp.T(1, v.actsIdle[h]))
		}
		m.AddConstraint(fmt.Sprintf("one_action_%d", h), milp.Equal, 1, one...)

		if !in.V2GAllowed(h) {
			m.AddConstraint(fmt.Sprintf("v2g_gate_%d", h), milp.Equal, 0, milp.T(1, v.actsDischarge[h]))
		}
		m.AddConstraint(fmt.Sprintf("discharge_floor_%d", h), milp.GreaterEq, 0,
			milp.T(1, v.soc[h]), milp.T(-floor, v.actsDischarge[h]))
	}
	f.terminal(m, in, v)
	f.restrict(m, in, v)
	dir, terms := f.objective(in, v)
	m.SetObjective(dir, terms...)
	return m, v
}

// costFormulation reaches the required energy at minimum total cost.
type costFormulation struct{}

func (costFormulation) name() string { return "cost" }

func (costFormulation) floorEnergy(in Input) float64 { return in.RequiredEnergy }

func (costFormulation) terminal(m *milp.Model, in Input, v *decisionVars) {
	m.AddConstraint("final_soc", milp.Equal, in.RequiredEnergy, milp.T(1, v.soc[in.Horizon]))
}

func (costFormulation) restrict(*milp.Model, Input, *decisionVars) {}

func (costFormulation) objective(in Input, v *decisionVars) (milp.Direction, []milp.Term) {
	p := in.Params
	wear := p.WearCost()
	co2 := p.CO2CostPerKWh()
	terms := make([]milp.Term, 0, 6*in.Horizon)
	for h := 0; h < in.Horizon; h++ {
		terms = append(terms,
			milp.T(in.Price[h]+wear+co2, v.grid[h]),
			milp.T(-p.V2GSellPrice+wear, v.discharge[h]),
			milp.T(wear, v.solar[h]),
			milp.T(p.SwitchPenalty, v.actsDischarge[h]),
		)
	}
	return milp.Minimize, terms
}

func (f costFormulation) moves(in Input, h int) []move {
	p := in.Params
	wear := p.WearCost()
	out := []move{
		{action: model.ActionSolar, hi: in.Solar[h], unit: wear},
		{action: model.ActionGrid, hi: p.MaxChargeRate, unit: in.Price[h] + wear + p.CO2CostPerKWh()},
	}
	return append(out, sharedMoves(in, h, f.floorEnergy(in))...)
}

// sharedMoves are the discharge and idle actions, identical in both modes
// once the eco objective is negated.
func sharedMoves(in Input, h int, floor float64) []move {
	p := in.Params
	var out []move
	if in.V2GAllowed(h) {
		out = append(out, move{
			action: model.ActionDischarge,
			lo:     -p.MaxDischargeRate,
			unit:   p.V2GSellPrice - p.WearCost(),
			fixed:  p.SwitchPenalty,
			floor:  floor,
		})
	}
	if p.AllowIdle {
		out = append(out, move{action: model.ActionIdle})
	}
	return out
}

// ecoFormulation maximizes solar to V2G arbitrage profit and closes the
// cycle at the starting state of charge. Grid charging is forbidden, so the
// carbon term is left out.
type ecoFormulation struct{}

func (ecoFormulation) name() string { return "eco" }

func (ecoFormulation) floorEnergy(in Input) float64 { return in.Params.InitialSoC }

func (ecoFormulation) terminal(m *milp.Model, in Input, v *decisionVars) {
	m.AddConstraint("eco_final_soc", milp.Equal, in.Params.InitialSoC, milp.T(1, v.soc[in.Horizon]))
}

func (ecoFormulation) restrict(m *milp.Model, in Input, v *decisionVars) {
	for h := 0; h < in.Horizon; h++ {
		m.AddConstraint(fmt.Sprintf("eco_no_grid_%d", h), milp.Equal, 0, milp.T(1, v.actsGrid[h]))
	}
}

func (ecoFormulation) objective(in Input, v *decisionVars) (milp.Direction, []milp.Term) {
	p := in.Params
	wear := p.WearCost()
	terms := make([]milp.Term, 0, 4*in.Horizon)
	for h := 0; h < in.Horizon; h++ {
		terms = append(terms,
			milp.T(p.V2GSellPrice-wear, v.discharge[h]),
			milp.T(-in.Price[h]-wear, v.grid[h]),
			milp.T(-wear, v.solar[h]),
			milp.T(-p.SwitchPenalty, v.actsDischarge[h]),
		)
	}
	return milp.Maximize, terms
}

func (f ecoFormulation) moves(in Input, h int) []move {
	out := []move{{action: model.ActionSolar, hi: in.Solar[h], unit: in.Params.WearCost()}}
	return append(out, sharedMoves(in, h, f.floorEnergy(in))...)
}
