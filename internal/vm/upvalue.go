package vm

import "github.com/lattice-lang/lattice/internal/value"

// Upvalue is a closure's capture slot (spec §3.5). It is open while the
// defining frame is live — pointing at the frame's stack slot — and
// closed once that frame returns, at which point its final value has
// been copied into the cell owned by this Upvalue.
type Upvalue struct {
	stackSlot int // absolute operand-stack index this upvalue tracks while open
	closed    bool
	cell      value.Value
	next      *Upvalue // intrusive list, sorted by descending stackSlot, for O(1) "above this depth" scans
}

func newOpenUpvalue(slot int) *Upvalue {
	return &Upvalue{stackSlot: slot}
}

func (u *Upvalue) Get(stack *OperandStack) value.Value {
	if u.closed {
		return u.cell
	}
	return stack.At(u.stackSlot)
}

func (u *Upvalue) Set(stack *OperandStack, v value.Value) {
	if u.closed {
		u.cell = v
		return
	}
	stack.SetAt(u.stackSlot, v)
}

func (u *Upvalue) close(stack *OperandStack) {
	if u.closed {
		return
	}
	u.cell = stack.At(u.stackSlot)
	u.closed = true
}

// openUpvalues is the VM's intrusive, descending-by-slot list of open
// upvalues referenced by any live closure, used to implement the
// "close on frame exit" discipline of spec §3.5/§4.4.
type openUpvalues struct {
	head *Upvalue
}

// findOrCreate returns the existing open upvalue for slot, or creates
// one, keeping the list sorted by descending stackSlot.
func (o *openUpvalues) findOrCreate(slot int) *Upvalue {
	var prev *Upvalue
	cur := o.head
	for cur != nil && cur.stackSlot > slot {
		prev = cur
		cur = cur.next
	}
	if cur != nil && cur.stackSlot == slot {
		return cur
	}
	fresh := newOpenUpvalue(slot)
	fresh.next = cur
	if prev == nil {
		o.head = fresh
	} else {
		prev.next = fresh
	}
	return fresh
}

// closeFrom closes every open upvalue at or above the given stack
// depth, moving each one's final value into its heap cell, and
// removes them from the open list (spec §3.5: "on frame exit, each of
// its open upvalues referenced by any surviving closure is closed").
func (o *openUpvalues) closeFrom(depth int, stack *OperandStack) {
	for o.head != nil && o.head.stackSlot >= depth {
		o.head.close(stack)
		o.head = o.head.next
	}
}
