package runtime

import "github.com/lattice-lang/lattice/internal/value"

// OnPhase registers callback to fire on any phase transition of name
// (spec §4.5). Callbacks fire synchronously in registration order; a
// callback that errors propagates upward, aborting the initiating
// store.
func (r *Runtime) OnPhase(name string, callback *value.Closure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reactions[name] = append(r.reactions[name], callback)
}

// FireReactions invokes every callback registered on name, in
// registration order, with arguments (new_phase_name, current_value).
// The first callback to error aborts the remaining callbacks and is
// propagated to the caller (spec §4.5).
func (r *Runtime) FireReactions(name string, newPhase value.Phase, current value.Value) error {
	r.mu.Lock()
	callbacks := append([]*value.Closure(nil), r.reactions[name]...)
	r.mu.Unlock()

	args := []value.Value{value.NewStr(newPhase.String()), value.DeepClone(current)}
	for _, cb := range callbacks {
		if _, err := r.invoke(cb, args); err != nil {
			return err
		}
	}
	return nil
}
