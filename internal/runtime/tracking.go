package runtime

import "github.com/lattice-lang/lattice/internal/value"

// Snapshot is one recorded moment in a tracked variable's history
// (spec §3.6): the phase at capture time, a deep clone of the value,
// the source line, and the enclosing function name (empty for
// top-level).
type Snapshot struct {
	Phase value.Phase
	Value value.Value
	Line  int32
	Fn    string
}

// TrackedVariable is the runtime metadata recorded once a variable is
// passed to track() (spec §3.6).
type TrackedVariable struct {
	Name      string
	Snapshots []Snapshot
}

// Track registers name for history recording and captures an initial
// snapshot from the caller-supplied current value (spec §4.5: "captures
// an initial snapshot from whichever environment currently binds it" —
// resolving which environment that is, global or local, is the VM's
// responsibility since Runtime has no Environment access of its own).
func (r *Runtime) Track(name string, current value.Value, line int32, fn string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracked[name] = &TrackedVariable{
		Name: name,
		Snapshots: []Snapshot{{
			Phase: current.Phase(),
			Value: value.DeepClone(current),
			Line:  line,
			Fn:    fn,
		}},
	}
}

// IsTracked reports whether name has been passed to Track.
func (r *Runtime) IsTracked(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tracked[name]
	return ok
}

// RecordHistory appends a snapshot for name. It is a no-op if name was
// never tracked (callers are expected to guard with IsTracked on the
// hot assignment path, spec §4.5: "subsequent writes ... must call
// record_history").
func (r *Runtime) RecordHistory(name string, newValue value.Value, line int32, fn string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tv, ok := r.tracked[name]
	if !ok {
		return
	}
	tv.Snapshots = append(tv.Snapshots, Snapshot{
		Phase: newValue.Phase(),
		Value: value.DeepClone(newValue),
		Line:  line,
		Fn:    fn,
	})
	if r.historyCap > 0 && len(tv.Snapshots) > r.historyCap {
		tv.Snapshots = tv.Snapshots[len(tv.Snapshots)-r.historyCap:]
	}
}

// History returns the snapshot sequence for name as an Array of Maps
// with keys phase, value, line, fn (spec §4.5). phases() is the same
// operation under a second name in the language surface.
func (r *Runtime) History(name string) value.Value {
	r.mu.Lock()
	tv, ok := r.tracked[name]
	r.mu.Unlock()
	if !ok {
		return value.NewArray(nil)
	}
	elems := make([]value.Value, len(tv.Snapshots))
	for i, s := range tv.Snapshots {
		m := value.NewOrderedMap()
		m.Set("phase", value.NewStr(s.Phase.String()))
		m.Set("value", value.DeepClone(s.Value))
		m.Set("line", value.NewInt(int64(s.Line)))
		fn := value.NewNil()
		if s.Fn != "" {
			fn = value.NewStr(s.Fn)
		}
		m.Set("fn", fn)
		elems[i] = value.NewMap(m)
	}
	return value.NewArray(elems)
}

// Phases is an alias for History, matching the language-level name
// from spec §4.5.
func (r *Runtime) Phases(name string) value.Value { return r.History(name) }

// Rewind returns a deep clone of the snapshot k steps before the most
// recent one, or Nil if out of range (spec §4.5, §8:
// "rewind(x, k) for k >= len(phases(x)) returns Nil").
func (r *Runtime) Rewind(name string, k int) value.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	tv, ok := r.tracked[name]
	if !ok || k < 0 {
		return value.NewNil()
	}
	idx := len(tv.Snapshots) - 1 - k
	if idx < 0 || idx >= len(tv.Snapshots) {
		return value.NewNil()
	}
	return value.DeepClone(tv.Snapshots[idx].Value)
}

// HistoryLen reports len(phases(name)), used by callers that need the
// count without materializing the Array (e.g. pressure/seed bookkeeping
// in tests).
func (r *Runtime) HistoryLen(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	tv, ok := r.tracked[name]
	if !ok {
		return 0
	}
	return len(tv.Snapshots)
}
