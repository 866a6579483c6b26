package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Quantity is the request-boundary representation of a share quantity.
// Older chartworm clients send quantity as a single-element numeric array
// instead of a plain number; both forms are accepted here and normalized to
// a scalar, so nothing past the boundary ever sees the array shape.
type Quantity float64

func (q *Quantity) UnmarshalJSON(data []byte) error {
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		*q = Quantity(scalar)
		return nil
	}

	var list []float64
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("quantity must be a number or a numeric array: %w", err)
	}
	if len(list) == 0 {
		return errors.New("quantity array is empty")
	}
	*q = Quantity(list[0])
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(q))
}

func (q Quantity) Float64() float64 {
	return float64(q)
}
