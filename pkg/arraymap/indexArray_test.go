package arraymap

import (
	"testing"

	"github.com/weaverun/weave/pkg/reactive"
)

// TestIndexArrayPreservesPrefix is property P12: the first
// min(|prev|,|next|) entries keep identity (no construct/dispose) and
// just have their underlying value source rewritten.
func TestIndexArrayPreservesPrefix(t *testing.T) {
	sched := reactive.NewScheduler()
	list := reactive.MakeObservable(sched, []int{1, 2, 3})

	constructs := 0
	disposed := 0
	var readers []func() int

	out := MakeIndexArray(sched, list.Read, func(value func() int, index int) int {
		constructs++
		readers = append(readers, value)
		reactive.AddCleanup(sched, func(final bool) {
			if final {
				disposed++
			}
		})
		return value() * 10
	})

	if constructs != 3 {
		t.Fatalf("expected 3 initial constructs, got %d", constructs)
	}

	list.Write([]int{9, 8, 3})

	if constructs != 3 {
		t.Errorf("expected no new constructs when only values change, got %d total", constructs)
	}
	if disposed != 0 {
		t.Errorf("expected no disposals when only values change, got %d", disposed)
	}
	if got := out.Peek(); len(got) != 3 || got[0] != 10 || got[1] != 20 || got[2] != 30 {
		t.Fatalf("expected entries kept from their first mapper run, got %v", got)
	}
	if got := []int{readers[0](), readers[1](), readers[2]()}; got[0] != 9 || got[1] != 8 || got[2] != 3 {
		t.Fatalf("expected value sources rewritten to [9 8 3], got %v", got)
	}
}

// TestIndexArrayGrowsAndShrinksAtTail covers tail-only add/remove.
func TestIndexArrayGrowsAndShrinksAtTail(t *testing.T) {
	sched := reactive.NewScheduler()
	list := reactive.MakeObservable(sched, []int{1, 2})

	constructs := 0
	disposed := 0

	out := MakeIndexArray(sched, list.Read, func(value func() int, index int) int {
		constructs++
		reactive.AddCleanup(sched, func(final bool) {
			if final {
				disposed++
			}
		})
		return value()
	})

	list.Write([]int{1, 2, 3, 4})
	if constructs != 4 {
		t.Fatalf("expected 2 new tail constructs, got %d total", constructs)
	}

	list.Write([]int{1, 2})
	if disposed != 2 {
		t.Fatalf("expected 2 tail disposals, got %d", disposed)
	}
	if got := out.Peek(); len(got) != 2 {
		t.Fatalf("expected output truncated to 2 entries, got %v", got)
	}
}
