package features

import (
	"fmt"

	"github.com/kilianp07/fleetcare/core/model"
)

// Codebook maps vehicle types to stable integer codes. The order is fixed at
// construction; a model trained with one codebook must be queried with it.
type Codebook struct {
	order []model.VehicleType
	codes map[model.VehicleType]int
}

// DefaultCodebook is the encoding used across the engine.
var DefaultCodebook = NewCodebook(model.VehicleTruck, model.VehicleVan, model.VehicleCar, model.VehicleBus)

// NewCodebook assigns codes 0..n-1 in the given order. Duplicates keep their
// first position.
func NewCodebook(types ...model.VehicleType) Codebook {
	cb := Codebook{codes: make(map[model.VehicleType]int, len(types))}
	for _, t := range types {
		if _, ok := cb.codes[t]; ok {
			continue
		}
		cb.codes[t] = len(cb.order)
		cb.order = append(cb.order, t)
	}
	return cb
}

// Encode returns the code of t.
func (c Codebook) Encode(t model.VehicleType) (int, error) {
	code, ok := c.codes[t]
	if !ok {
		return 0, fmt.Errorf("%w: %q", model.ErrUnknownVehicleType, t)
	}
	return code, nil
}

// Types returns the codebook order.
func (c Codebook) Types() []model.VehicleType {
	out := make([]model.VehicleType, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of codes.
func (c Codebook) Len() int { return len(c.order) }
