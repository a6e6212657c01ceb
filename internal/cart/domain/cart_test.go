package domain

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func product(id string) Product {
	return Product{ID: id, Title: "Product " + id, ImageURL: "https://img/" + id, Price: 10}
}

func TestStateTransitions(t *testing.T) {
	t.Run("add appends with quantity 1", func(t *testing.T) {
		got := State{}.Add(product("A"))
		want := State{{ID: "A", Title: "Product A", ImageURL: "https://img/A", Price: 10, Quantity: 1}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("state mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("add twice merges into one item", func(t *testing.T) {
		got := State{}.Add(product("A")).Add(product("A"))
		if len(got) != 1 || got[0].Quantity != 2 {
			t.Fatalf("expected single item with quantity 2, got %+v", got)
		}
	})

	t.Run("add keeps insertion order", func(t *testing.T) {
		got := State{}.Add(product("A")).Add(product("B")).Increment("A")
		if got[0].ID != "A" || got[1].ID != "B" {
			t.Fatalf("expected order [A B], got %+v", got)
		}
		if got[0].Quantity != 2 || got[1].Quantity != 1 {
			t.Fatalf("unexpected quantities: %+v", got)
		}
	})

	t.Run("increment unknown id is a no-op", func(t *testing.T) {
		start := State{}.Add(product("A"))
		if diff := cmp.Diff(start, start.Increment("Z")); diff != "" {
			t.Fatalf("state changed (-want +got):\n%s", diff)
		}
	})

	t.Run("decrement at 1 removes the item", func(t *testing.T) {
		got := State{}.Add(product("A")).Add(product("B")).Decrement("A")
		if len(got) != 1 || got[0].ID != "B" {
			t.Fatalf("expected only B, got %+v", got)
		}
	})

	t.Run("decrement unknown id is a no-op", func(t *testing.T) {
		start := State{}.Add(product("A")).Add(product("B"))
		if diff := cmp.Diff(start, start.Decrement("Z")); diff != "" {
			t.Fatalf("state changed (-want +got):\n%s", diff)
		}
		empty := State{}.Add(product("A")).Decrement("A")
		if got := empty.Decrement("A"); len(got) != 0 {
			t.Fatalf("expected empty state, got %+v", got)
		}
	})

	t.Run("transitions do not alias the input", func(t *testing.T) {
		start := State{}.Add(product("A"))
		_ = start.Increment("A")
		_ = start.Add(product("A"))
		if start[0].Quantity != 1 {
			t.Fatalf("input mutated: %+v", start)
		}
	})
}

func TestScenarioAddIncrementDecrement(t *testing.T) {
	s := State{}.Add(Product{ID: "A"})
	steps := []struct {
		name string
		next func(State) State
		want []int
	}{
		{"increment", func(s State) State { return s.Increment("A") }, []int{2}},
		{"decrement", func(s State) State { return s.Decrement("A") }, []int{1}},
		{"decrement to empty", func(s State) State { return s.Decrement("A") }, []int{}},
	}
	for _, step := range steps {
		s = step.next(s)
		got := make([]int, 0, len(s))
		for _, item := range s {
			got = append(got, item.Quantity)
		}
		if diff := cmp.Diff(step.want, got); diff != "" {
			t.Fatalf("%s: quantities mismatch (-want +got):\n%s", step.name, diff)
		}
	}
}

func TestRandomMutationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ids := []string{"A", "B", "C", "D"}

	s := State{}
	for i := 0; i < 2000; i++ {
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(3) {
		case 0:
			s = s.Add(product(id))
		case 1:
			s = s.Increment(id)
		default:
			s = s.Decrement(id)
		}

		seen := map[string]bool{}
		for _, item := range s {
			if item.Quantity < 1 {
				t.Fatalf("step %d: item %q has quantity %d", i, item.ID, item.Quantity)
			}
			if seen[item.ID] {
				t.Fatalf("step %d: duplicate id %q", i, item.ID)
			}
			seen[item.ID] = true
		}
	}
}

func TestCountAndTotal(t *testing.T) {
	s := State{
		{ID: "A", Price: 2.5, Quantity: 2},
		{ID: "B", Price: 10, Quantity: 1},
	}
	if got := s.Count(); got != 3 {
		t.Fatalf("expected count 3, got %d", got)
	}
	if got := s.Total(); got != 15 {
		t.Fatalf("expected total 15, got %v", got)
	}
}
