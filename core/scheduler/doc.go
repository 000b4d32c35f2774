// Package scheduler plans hour-by-hour charging and discharging of a vehicle
// battery against solar, price and demand forecasts.
//
// Each hour the plan picks one action (solar charging, grid charging or
// discharging to the grid) subject to battery capacity, rate limits, V2G
// gating on grid demand and a terminal state of charge. The problem is
// formulated as a mixed-integer program. By default the Engine solves it
// exactly by dynamic programming over the state of charge; any milp.Solver
// can be substituted with WithSolver.
//
// Two objectives are available. Cost mode reaches the required energy by the
// deadline at minimum cost. Eco mode forbids grid charging, maximizes the
// profit of solar to V2G arbitrage and returns to the starting state of
// charge.
//
// The Engine keeps no state between calls. Observers attached with
// WithObserver receive one Event per Solve call carrying the full input and
// outcome.
package scheduler
