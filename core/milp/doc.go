// Package milp describes small mixed-integer linear programs and solves them.
//
// A Model holds bounded variables, some of them integral, linear constraints
// and a linear objective. Solver is the only capability the planner needs;
// BranchAndBound implements it with gonum's simplex for the LP relaxations.
//
// Every variable must have a finite lower bound. Upper bounds may be
// infinite.
package milp
