package domain

// Product is what the catalog hands to the cart: a CartItem without quantity.
type Product struct {
	ID       string
	Title    string
	ImageURL string
	Price    float64
}

type CartItem struct {
	ID       string
	Title    string
	ImageURL string
	Price    float64
	Quantity int
}

// State is the ordered cart. Items keep insertion order, ids are unique and
// every quantity is at least 1.
type State []CartItem

func (s State) Index(id string) int {
	for i, item := range s {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s State) Clone() State {
	out := make(State, len(s))
	copy(out, s)
	return out
}

// Count is the total number of units in the cart.
func (s State) Count() int {
	n := 0
	for _, item := range s {
		n += item.Quantity
	}
	return n
}

func (s State) Total() float64 {
	var total float64
	for _, item := range s {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Add appends p with quantity 1, or increments it when already present.
func (s State) Add(p Product) State {
	if s.Index(p.ID) >= 0 {
		return s.Increment(p.ID)
	}

	out := make(State, 0, len(s)+1)
	out = append(out, s...)
	return append(out, CartItem{
		ID:       p.ID,
		Title:    p.Title,
		ImageURL: p.ImageURL,
		Price:    p.Price,
		Quantity: 1,
	})
}

// Increment returns a copy with the matching item's quantity raised by one.
// Unknown ids leave the state as is.
func (s State) Increment(id string) State {
	out := s.Clone()
	if i := out.Index(id); i >= 0 {
		out[i].Quantity++
	}
	return out
}

// Decrement lowers the matching item's quantity by one and drops items that
// reach zero.
func (s State) Decrement(id string) State {
	out := make(State, 0, len(s))
	for _, item := range s {
		if item.ID == id {
			item.Quantity--
		}
		if item.Quantity > 0 {
			out = append(out, item)
		}
	}
	return out
}
