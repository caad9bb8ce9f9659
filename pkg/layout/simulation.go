package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/synapse-kb/synapse/backend/pkg/graph"
)

// Position is a settled 2D coordinate for one node, addressed by the node's
// index in the GraphData snapshot the simulation was built from.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Config holds the tunable parameters of the force simulation.
type Config struct {
	Width  float64
	Height float64

	LinkDistance   float64 // target edge length for the attractive link force
	LinkStrength   float64
	ChargeStrength float64 // pairwise repulsion, negative pushes apart
	CenterStrength float64
	CollidePadding float64 // extra spacing on top of the two radii

	Alpha         float64 // initial energy
	AlphaMin      float64 // settle threshold
	AlphaDecay    float64 // per-tick cooling rate
	ReheatAlpha   float64 // energy restored by Reheat
	VelocityDecay float64

	MaxTicks int // hard cap for Settle
}

// DefaultConfig returns the simulation parameters used by the renderer for
// a viewport of the given size.
func DefaultConfig(width, height float64) Config {
	return Config{
		Width:  width,
		Height: height,

		LinkDistance:   110,
		LinkStrength:   0.08,
		ChargeStrength: -360,
		CenterStrength: 0.04,
		CollidePadding: 4,

		Alpha:         1.0,
		AlphaMin:      0.001,
		AlphaDecay:    0.0228,
		ReheatAlpha:   0.5,
		VelocityDecay: 0.6,

		MaxTicks: 500,
	}
}

type body struct {
	pos    r2.Vec
	vel    r2.Vec
	radius float64
	pinned bool
	pin    r2.Vec
}

type springEdge struct {
	a, b   int
	length float64
}

// Simulation is an explicitly-stepped force simulation. Node positions live
// in an index-addressed arena owned by the simulation; the GraphData snapshot
// it was built from is never mutated.
//
// A simulation settles once its energy (alpha) cools below AlphaMin. It can
// be reheated after drag or reset interactions, and must be stopped before a
// replacement simulation starts.
type Simulation struct {
	cfg     Config
	bodies  []body
	edges   []springEdge
	alpha   float64
	running bool
	ticks   int
}

// golden-angle spiral, same deterministic initial placement d3 uses
const initialRadiusStep = 14.0

var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// NewSimulation builds a simulation arena from a GraphData snapshot. Links
// with a missing endpoint are excluded from the spring set. The snapshot may
// be empty; callers are expected to check Size before starting.
func NewSimulation(data graph.GraphData, cfg Config) *Simulation {
	s := &Simulation{
		cfg:    cfg,
		bodies: make([]body, len(data.Nodes)),
		alpha:  cfg.Alpha,
	}

	center := r2.Vec{X: cfg.Width / 2, Y: cfg.Height / 2}
	for i, n := range data.Nodes {
		radius := initialRadiusStep * math.Sqrt(float64(i)+0.5)
		angle := float64(i) * goldenAngle
		s.bodies[i] = body{
			pos: r2.Add(center, r2.Vec{
				X: radius * math.Cos(angle),
				Y: radius * math.Sin(angle),
			}),
			radius: graph.RadiusFor(n.Label),
		}
	}

	idx := data.NodeIndex()
	for _, l := range data.ValidLinks() {
		s.edges = append(s.edges, springEdge{
			a:      idx[l.Source],
			b:      idx[l.Target],
			length: cfg.LinkDistance,
		})
	}

	return s
}

// Size returns the number of bodies in the arena.
func (s *Simulation) Size() int {
	return len(s.bodies)
}

// EdgeCount returns the number of springs built from valid links.
func (s *Simulation) EdgeCount() int {
	return len(s.edges)
}

// Running reports whether the simulation is active (started and not yet
// settled or stopped).
func (s *Simulation) Running() bool {
	return s.running
}

// Start activates the simulation. Starting an empty arena is a no-op.
func (s *Simulation) Start() {
	if len(s.bodies) == 0 {
		return
	}
	s.running = true
}

// Stop deactivates the simulation without resetting positions. It must be
// called before a replacement simulation starts, so a discarded view never
// keeps animating.
func (s *Simulation) Stop() {
	s.running = false
}

// Reheat restores energy so the layout can resettle after an interaction.
func (s *Simulation) Reheat() {
	if len(s.bodies) == 0 {
		return
	}
	s.alpha = s.cfg.ReheatAlpha
	s.running = true
}

// Alpha returns the current energy level.
func (s *Simulation) Alpha() float64 {
	return s.alpha
}

// Step advances the simulation one tick. It returns false once the
// simulation has settled (alpha below the threshold) or was stopped.
func (s *Simulation) Step() bool {
	if !s.running {
		return false
	}

	s.applyLinkForce()
	s.applyChargeForce()
	s.applyCenterForce()
	s.applyCollideForce()
	s.integrate()

	s.ticks++
	s.alpha *= 1 - s.cfg.AlphaDecay
	if s.alpha < s.cfg.AlphaMin {
		s.running = false
		return false
	}
	return true
}

// Settle runs the simulation until it settles or the tick budget is spent.
func (s *Simulation) Settle() {
	s.Start()
	for i := 0; i < s.cfg.MaxTicks; i++ {
		if !s.Step() {
			return
		}
	}
	s.running = false
}

// Pin fixes a body at the given coordinates and reheats so neighbors react.
// Used for the duration of a drag gesture.
func (s *Simulation) Pin(i int, x, y float64) {
	if i < 0 || i >= len(s.bodies) {
		return
	}
	s.bodies[i].pinned = true
	s.bodies[i].pin = r2.Vec{X: x, Y: y}
	s.bodies[i].pos = s.bodies[i].pin
	s.bodies[i].vel = r2.Vec{}
	s.Reheat()
}

// Unpin releases a pinned body, letting the simulation resettle it.
func (s *Simulation) Unpin(i int) {
	if i < 0 || i >= len(s.bodies) {
		return
	}
	s.bodies[i].pinned = false
	s.Reheat()
}

// Pinned reports whether the body at index i is currently pinned.
func (s *Simulation) Pinned(i int) bool {
	if i < 0 || i >= len(s.bodies) {
		return false
	}
	return s.bodies[i].pinned
}

// ClearPins releases every pinned body.
func (s *Simulation) ClearPins() {
	for i := range s.bodies {
		s.bodies[i].pinned = false
	}
}

// Positions returns a copy of the current arena coordinates.
func (s *Simulation) Positions() []Position {
	out := make([]Position, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = Position{X: b.pos.X, Y: b.pos.Y}
	}
	return out
}

func (s *Simulation) applyLinkForce() {
	for _, e := range s.edges {
		a, b := &s.bodies[e.a], &s.bodies[e.b]
		diff := r2.Sub(b.pos, a.pos)
		dist := r2.Norm(diff)
		if dist == 0 {
			diff = r2.Vec{X: jitter, Y: jitter}
			dist = r2.Norm(diff)
		}
		// positive when stretched past the target length
		f := (dist - e.length) / dist * s.cfg.LinkStrength * s.alpha
		push := r2.Scale(f, diff)
		b.vel = r2.Sub(b.vel, push)
		a.vel = r2.Add(a.vel, push)
	}
}

const jitter = 1e-6

func (s *Simulation) applyChargeForce() {
	for i := range s.bodies {
		for j := i + 1; j < len(s.bodies); j++ {
			a, b := &s.bodies[i], &s.bodies[j]
			diff := r2.Sub(b.pos, a.pos)
			dist2 := diff.X*diff.X + diff.Y*diff.Y
			if dist2 == 0 {
				diff = r2.Vec{X: jitter, Y: jitter}
				dist2 = diff.X*diff.X + diff.Y*diff.Y
			}
			f := s.cfg.ChargeStrength * s.alpha / dist2
			push := r2.Scale(f, diff)
			a.vel = r2.Add(a.vel, push)
			b.vel = r2.Sub(b.vel, push)
		}
	}
}

func (s *Simulation) applyCenterForce() {
	center := r2.Vec{X: s.cfg.Width / 2, Y: s.cfg.Height / 2}
	for i := range s.bodies {
		toCenter := r2.Sub(center, s.bodies[i].pos)
		s.bodies[i].vel = r2.Add(s.bodies[i].vel, r2.Scale(s.cfg.CenterStrength*s.alpha, toCenter))
	}
}

func (s *Simulation) applyCollideForce() {
	for i := range s.bodies {
		for j := i + 1; j < len(s.bodies); j++ {
			a, b := &s.bodies[i], &s.bodies[j]
			minDist := a.radius + b.radius + s.cfg.CollidePadding
			diff := r2.Sub(b.pos, a.pos)
			dist := r2.Norm(diff)
			if dist == 0 {
				diff = r2.Vec{X: jitter, Y: jitter}
				dist = r2.Norm(diff)
			}
			if dist >= minDist {
				continue
			}
			overlap := (minDist - dist) / dist / 2
			push := r2.Scale(overlap, diff)
			a.pos = r2.Sub(a.pos, push)
			b.pos = r2.Add(b.pos, push)
		}
	}
}

func (s *Simulation) integrate() {
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.pinned {
			b.pos = b.pin
			b.vel = r2.Vec{}
			continue
		}
		b.vel = r2.Scale(s.cfg.VelocityDecay, b.vel)
		b.pos = r2.Add(b.pos, b.vel)
	}
}
