package fixture

import "github.com/lox/idleplanner/internal/world"

// Bundle wires one set of fixture collaborators sharing one
// registries value, the shape sdk/planner's constructors expect
// (NewRateCache(estimator, registries, ...), NewAdvancer(estimator,
// value, provider, ...), NewConsumer(provider, registries, ...)).
type Bundle struct {
	Registries world.Registries
	Provider   world.GameProvider
	Estimator  world.Estimator
	Value      world.ValueModel
	Enumerator world.CandidateEnumerator
}

// New returns a fresh Bundle plus the starting GameState: level 1 in
// every skill, empty inventory, no active action, full health.
func New() (Bundle, world.GameState) {
	reg := newRegistries()
	bundle := Bundle{
		Registries: reg,
		Provider:   newProvider(reg),
		Estimator:  newEstimator(reg),
		Value:      newValueModel(reg),
		Enumerator: newEnumerator(reg),
	}
	return bundle, newState(reg)
}
