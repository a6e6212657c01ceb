package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformed = errors.New("malformed cart blob")

// record is the persisted shape of a CartItem. Field names are part of the
// on-disk contract.
type record struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Encode serializes the whole state as one JSON array.
func Encode(s State) ([]byte, error) {
	records := make([]record, 0, len(s))
	for _, item := range s {
		records = append(records, record{
			ID:       item.ID,
			Title:    item.Title,
			ImageURL: item.ImageURL,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return json.Marshal(records)
}

// Decode parses a blob written by Encode and checks the state invariants.
func Decode(blob []byte) (State, error) {
	var records []record
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if records == nil {
		return nil, fmt.Errorf("%w: blob is null", ErrMalformed)
	}

	s := make(State, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: item %d has no id", ErrMalformed, i)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrMalformed, r.ID)
		}
		if r.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %q has quantity %d", ErrMalformed, r.ID, r.Quantity)
		}
		seen[r.ID] = struct{}{}
		s = append(s, CartItem{
			ID:       r.ID,
			Title:    r.Title,
			ImageURL: r.ImageURL,
			Price:    r.Price,
			Quantity: r.Quantity,
		})
	}
	return s, nil
}
