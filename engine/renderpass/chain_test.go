package renderpass

import (
	"testing"

	"github.com/ironspire/engine/engine/gpu"
	"github.com/ironspire/engine/engine/renderqueue"
)

// fakeFramebuffer stands in for a backend framebuffer; only its
// identity is compared.
type fakeFramebuffer struct{ gpu.Framebuffer }

func TestAppendLinksHeadAndTail(t *testing.T) {
	c := NewChain()
	a, err := c.Append("a", renderqueue.Opaque, none, Callbacks{})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	b, err := c.Append("b", renderqueue.Opaque, none, Callbacks{})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if c.head != a || c.tail != b {
		t.Errorf("expecting head=%d tail=%d, got head=%d tail=%d", a, b, c.head, c.tail)
	}

	var order []string
	c.Walk(func(p *Pass) { order = append(order, p.DebugName) })
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("expecting walk order [a b], got %v", order)
	}
}

func TestPeekFindsPassByName(t *testing.T) {
	c := NewChain()
	c.Append("shadow", renderqueue.Opaque, none, Callbacks{})

	p, ok := c.Peek("shadow")
	if !ok || p.DebugName != "shadow" {
		t.Errorf("expecting Peek to find the shadow pass")
	}
	if _, ok := c.Peek("missing"); ok {
		t.Errorf("expecting Peek to report false for an unknown name")
	}
}

func TestRemoveRelinksNeighbors(t *testing.T) {
	c := NewChain()
	a, _ := c.Append("a", renderqueue.Opaque, none, Callbacks{})
	_, _ = c.Append("b", renderqueue.Opaque, none, Callbacks{})
	c.Append("c", renderqueue.Opaque, none, Callbacks{})

	bIdx := c.byName["b"]
	c.Remove(bIdx)

	var order []string
	c.Walk(func(p *Pass) { order = append(order, p.DebugName) })
	if len(order) != 2 || order[0] != "a" || order[1] != "c" {
		t.Errorf("expecting walk order [a c] after removing b, got %v", order)
	}
	if c.slots[a].next != c.tail {
		t.Errorf("expecting a's next to now point at the tail")
	}
}

func TestBorrowerResolvesParentFramebuffer(t *testing.T) {
	c := NewChain()
	owner, _ := c.Append("owner", renderqueue.Opaque, none, Callbacks{})
	borrower, _ := c.Append("borrower", renderqueue.Debug, owner, Callbacks{})

	if !c.slots[borrower].IsBorrower() {
		t.Errorf("expecting the borrower pass to report IsBorrower true")
	}
	if c.slots[owner].IsBorrower() {
		t.Errorf("expecting the owner pass to report IsBorrower false")
	}

	fb := &fakeFramebuffer{}
	c.slots[owner].Framebuffer = fb
	if got := c.ResolveFramebuffer(borrower); got != fb {
		t.Errorf("expecting the borrower to resolve to its parent's framebuffer")
	}
	if got := c.ResolveFramebuffer(owner); got != fb {
		t.Errorf("expecting the owner to resolve to its own framebuffer")
	}
}

func TestForwardOutputsCopiesPreviousPass(t *testing.T) {
	c := NewChain()
	_, _ = c.Append("a", renderqueue.Opaque, none, Callbacks{})
	bIdx, _ := c.Append("b", renderqueue.Opaque, none, Callbacks{})

	c.slots[0].OutputCount = 1
	c.slots[bIdx].ForwardOutputs()

	if c.slots[bIdx].OutputCount != 1 {
		t.Errorf("expecting ForwardOutputs to copy OutputCount from the previous pass")
	}
}

func TestAllocExhaustionReturnsError(t *testing.T) {
	c := NewChain()
	for i := 0; i < RenderPassesMax; i++ {
		if _, err := c.Append("p", renderqueue.Opaque, none, Callbacks{}); err != nil {
			t.Fatalf("unexpected error filling the pool at %d: %s", i, err)
		}
	}
	if _, err := c.Append("overflow", renderqueue.Opaque, none, Callbacks{}); err == nil {
		t.Errorf("expecting Append to fail once the pass pool is exhausted")
	}
}
