// Package layout repositions atoms for display after a transformation.  The
// relaxation is purely cosmetic: no chemical property anywhere in the engine
// derives from coordinates, so a caller may skip it entirely.
package layout

import (
	"math"

	"github.com/turtacn/ChemRxn-Engine/internal/domain/graph"
)

// Options tunes the force relaxation.
type Options struct {
	// Iterations is the number of relaxation sweeps.
	Iterations int

	// BondLength is the target distance between bonded atoms.
	BondLength float64

	// RepulseRadius is the distance under which non-bonded atoms push apart.
	RepulseRadius float64

	// Step scales each per-sweep displacement.
	Step float64
}

// DefaultOptions returns the tuning used after transformations.
func DefaultOptions() Options {
	return Options{Iterations: 50, BondLength: 1.0, RepulseRadius: 0.8, Step: 0.1}
}

// Relax nudges atom positions toward the target bond length while pushing
// overlapping non-bonded atoms apart.  It mutates positions only; topology,
// elements, charges, and orders are untouched.
func Relax(g *graph.Graph, opts Options) {
	if opts.Iterations <= 0 || g.AtomCount() < 2 {
		return
	}

	for iter := 0; iter < opts.Iterations; iter++ {
		atoms := g.Atoms()
		dx := make(map[int]float64, len(atoms))
		dy := make(map[int]float64, len(atoms))

		// Spring force along bonds.
		for _, b := range g.Bonds() {
			a1, _ := g.Atom(b.Atom1)
			a2, _ := g.Atom(b.Atom2)
			vx, vy := a2.X-a1.X, a2.Y-a1.Y
			dist := math.Hypot(vx, vy)
			if dist < 1e-9 {
				// Coincident endpoints: separate along a fixed axis.
				vx, vy, dist = 1, 0, 1
			}
			stretch := (dist - opts.BondLength) / dist
			fx, fy := vx*stretch*0.5, vy*stretch*0.5
			dx[int(a1.ID)] += fx
			dy[int(a1.ID)] += fy
			dx[int(a2.ID)] -= fx
			dy[int(a2.ID)] -= fy
		}

		// Repulsion between close non-bonded pairs.
		for i := 0; i < len(atoms); i++ {
			for j := i + 1; j < len(atoms); j++ {
				if _, bonded := g.BondBetween(atoms[i].ID, atoms[j].ID); bonded {
					continue
				}
				vx, vy := atoms[j].X-atoms[i].X, atoms[j].Y-atoms[i].Y
				dist := math.Hypot(vx, vy)
				if dist >= opts.RepulseRadius {
					continue
				}
				if dist < 1e-9 {
					vx, vy, dist = 1, 0, 1
				}
				push := (opts.RepulseRadius - dist) / dist * 0.5
				dx[int(atoms[i].ID)] -= vx * push
				dy[int(atoms[i].ID)] -= vy * push
				dx[int(atoms[j].ID)] += vx * push
				dy[int(atoms[j].ID)] += vy * push
			}
		}

		for _, a := range atoms {
			mx, my := dx[int(a.ID)]*opts.Step, dy[int(a.ID)]*opts.Step
			if mx != 0 || my != 0 {
				g.SetPosition(a.ID, a.X+mx, a.Y+my)
			}
		}
	}
}
