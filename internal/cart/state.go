package cart

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Line is one gift in the session cart. Unit price is snapshotted from the
// catalog at add time and refreshed whenever the same gift is added again.
type Line struct {
	RegistryProductID uuid.UUID `json:"registry_product_id"`
	RegistryID        uuid.UUID `json:"registry_id"`
	RegistryName      string    `json:"registry_name"`
	ProductID         uuid.UUID `json:"product_id"`
	ProductName       string    `json:"product_name"`
	ImageURL          *string   `json:"image_url,omitempty"`
	Quantity          int       `json:"quantity"`
	UnitPriceKobo     int64     `json:"unit_price_kobo"`
}

// TotalKobo is the line quantity times the snapshotted unit price.
func (l Line) TotalKobo() int64 {
	return int64(l.Quantity) * l.UnitPriceKobo
}

// State is the session cart payload persisted as JSON.
type State struct {
	Lines        []Line `json:"lines"`
	DiscountCode string `json:"discount_code,omitempty"`
}

// IsEmpty reports whether the cart has no lines.
func (s State) IsEmpty() bool {
	return len(s.Lines) == 0
}

// TotalKobo sums all line totals before any discount.
func (s State) TotalKobo() int64 {
	var total int64
	for _, line := range s.Lines {
		total += line.TotalKobo()
	}
	return total
}

func (s State) findLine(registryProductID uuid.UUID) int {
	for i := range s.Lines {
		if s.Lines[i].RegistryProductID == registryProductID {
			return i
		}
	}
	return -1
}

func encodeState(state State) (string, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeState(payload string) (State, error) {
	var state State
	if payload == "" {
		return state, nil
	}
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return State{}, err
	}
	return state, nil
}
