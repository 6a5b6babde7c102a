package vm

import (
	"log"
	"math"

	"github.com/lattice-lang/lattice/internal/chunk"
	"github.com/lattice-lang/lattice/internal/extension"
	"github.com/lattice-lang/lattice/internal/frontend"
	"github.com/lattice-lang/lattice/internal/native"
	"github.com/lattice-lang/lattice/internal/runtime"
	"github.com/lattice-lang/lattice/internal/value"
)

// maxFrames bounds call depth the way the teacher bounds recursion
// depth implicitly through its fixed-size interpreter stack.
const maxFrames = 1024

// thrownError wraps a Value raised by the THROW opcode so the dispatch
// loop's ordinary Go error path can carry arbitrary catchable payloads,
// not just ConstError sentinels.
type thrownError struct{ val value.Value }

func (t *thrownError) Error() string { return value.Display(t.val) }

// VM is the Lattice stack bytecode interpreter (spec §4.4). It owns the
// operand stack, the call frame stack, the open-upvalue list, the
// top-level environment, and the Runtime services context; it supplies
// the Runtime with a ClosureInvoker that calls back into itself.
type VM struct {
	stack   *OperandStack
	frames  []*CallFrame
	open    openUpvalues
	globals *value.Environment
	rt      *runtime.Runtime
	loader  frontend.Loader
	chunks  []*chunk.Chunk
	logger  *log.Logger
	exts    *extension.Registry

	lastReturn value.Value
}

func New() *VM {
	vm := &VM{
		stack:   NewOperandStack(),
		globals: value.NewEnvironment(nil),
		exts:    extension.NewRegistry(),
	}
	vm.rt = runtime.New(vm.invokeClosure)
	native.StandardLibrary().DefineAll(vm.globals)
	vm.defineRuntimeBuiltins()
	vm.defineChannelBuiltins()
	return vm
}

// SetLogger enables per-instruction tracing to l (see trace.go). A nil
// logger (the default) disables tracing.
func (vm *VM) SetLogger(l *log.Logger) { vm.logger = l }

// SetLoader installs the module loader require() and load_bytecode()
// consult to resolve a path to a compiled Chunk.
func (vm *VM) SetLoader(l frontend.Loader) { vm.loader = l }

// Globals exposes the top-level environment so an embedder can define
// additional host functions before Run.
func (vm *VM) Globals() *value.Environment { return vm.globals }

// Runtime exposes the services context.
func (vm *VM) Runtime() *runtime.Runtime { return vm.rt }

// TrackedChunks returns every chunk this VM has loaded, via Run or
// require/load_bytecode, in load order (spec §4.4: their lifetime is
// bound to the VM, not to any one call frame).
func (vm *VM) TrackedChunks() []*chunk.Chunk {
	return append([]*chunk.Chunk(nil), vm.chunks...)
}

// Run executes a top-level chunk to completion and returns its final
// value. A script is itself an implicit zero-argument function whose
// body falls through to an implicit "return nil" if it never executes
// an explicit OP_RETURN.
func (vm *VM) Run(c *chunk.Chunk) (value.Value, error) {
	vm.chunks = append(vm.chunks, c)
	vm.frames = append(vm.frames, &CallFrame{Chunk: c, SlotBase: vm.stack.Len()})
	return vm.run(0)
}

func (vm *VM) currentFrame() *CallFrame {
	if len(vm.frames) == 0 {
		return nil
	}
	return vm.frames[len(vm.frames)-1]
}

// run drives the dispatch loop until the frame stack depth returns to
// stopDepth, then reports the value of whichever frame most recently
// returned. Run enters with stopDepth 0; callSync (native reactions,
// seed contracts, and invokeClosure) enters with the depth it started
// at, so a nested compiled call cannot escape into frames that
// out-live it.
func (vm *VM) run(stopDepth int) (value.Value, error) {
	for {
		if len(vm.frames) <= stopDepth {
			return vm.lastReturn, nil
		}
		frame := vm.frames[len(vm.frames)-1]

		if frame.IP >= len(frame.Chunk.Code) {
			vm.popFrame(frame, value.NewNil())
			continue
		}

		if vm.logger != nil {
			vm.trace(frame)
		}

		op := chunk.OpCode(frame.Chunk.Code[frame.IP])
		line := frame.Chunk.LineFor(frame.IP)
		frame.IP++

		if err := vm.dispatch(frame, op, line); err != nil {
			if !vm.unwind(err, stopDepth) {
				return value.Value{}, err
			}
		}
	}
}

// popFrame unwinds frame and records its return value. If a caller
// frame remains, the value is pushed onto the stack at the exact slot
// the callee occupied (spec §4.4's CALL stack effect: pop callee+args,
// push result) — callSync's nested re-entry relies on this same push,
// then truncates it away itself once it has read the result as a Go
// value (see callSync).
func (vm *VM) popFrame(frame *CallFrame, retVal value.Value) {
	vm.open.closeFrom(frame.SlotBase, vm.stack)
	vm.stack.TruncateTo(frame.SlotBase)
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.lastReturn = retVal
	if len(vm.frames) > 0 {
		_ = vm.stack.Push(retVal)
	}
}

// unwind pops frames above stopDepth looking for an active try handler.
// It reports whether execution should resume at a catch target; false
// means err escaped every frame in range and must propagate to run's
// caller (spec §4.4: an uncaught throw terminates the current call).
func (vm *VM) unwind(err error, stopDepth int) bool {
	for len(vm.frames) > stopDepth {
		frame := vm.frames[len(vm.frames)-1]
		if h, ok := frame.popTry(); ok {
			vm.stack.TruncateTo(h.stackDepth)
			_ = vm.stack.Push(errToValue(err))
			frame.IP = h.catchIP
			return true
		}
		vm.open.closeFrom(frame.SlotBase, vm.stack)
		vm.stack.TruncateTo(frame.SlotBase)
		vm.frames = vm.frames[:len(vm.frames)-1]
	}
	return false
}

func errToValue(err error) value.Value {
	if t, ok := err.(*thrownError); ok {
		return t.val
	}
	return value.NewError(value.NewStr(err.Error()))
}

func (vm *VM) readByte(frame *CallFrame) byte {
	b := frame.Chunk.Code[frame.IP]
	frame.IP++
	return b
}

func (vm *VM) readU16(frame *CallFrame) uint16 {
	hi := vm.readByte(frame)
	lo := vm.readByte(frame)
	return uint16(hi)<<8 | uint16(lo)
}

func localName(c *chunk.Chunk, slot int) string {
	if slot >= 0 && slot < len(c.LocalNames) {
		return c.LocalNames[slot]
	}
	return ""
}

// dispatch executes exactly one instruction.
func (vm *VM) dispatch(frame *CallFrame, op chunk.OpCode, _ int32) error {
	switch op {
	case chunk.OP_CONST:
		idx := vm.readU16(frame)
		return vm.stack.Push(frame.Chunk.Consts[idx])
	case chunk.OP_NIL:
		return vm.stack.Push(value.NewNil())
	case chunk.OP_TRUE:
		return vm.stack.Push(value.NewBool(true))
	case chunk.OP_FALSE:
		return vm.stack.Push(value.NewBool(false))

	case chunk.OP_ADD, chunk.OP_SUB, chunk.OP_MUL, chunk.OP_DIV, chunk.OP_MOD:
		return vm.binaryArith(op)
	case chunk.OP_NEG:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		switch v.Variant() {
		case value.VInt:
			return vm.stack.Push(value.NewInt(-v.Int()))
		case value.VFloat:
			return vm.stack.Push(value.NewFloat(-v.Float()))
		default:
			return value.ErrTypeError
		}

	case chunk.OP_EQ, chunk.OP_NEQ, chunk.OP_LT, chunk.OP_GT, chunk.OP_LE, chunk.OP_GE:
		return vm.compare(op)
	case chunk.OP_NOT:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		return vm.stack.Push(value.NewBool(!value.IsTruthy(v)))
	case chunk.OP_AND, chunk.OP_OR:
		b, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		a, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		var result bool
		if op == chunk.OP_AND {
			result = value.IsTruthy(a) && value.IsTruthy(b)
		} else {
			result = value.IsTruthy(a) || value.IsTruthy(b)
		}
		return vm.stack.Push(value.NewBool(result))

	case chunk.OP_POP:
		_, err := vm.stack.Pop()
		return err
	case chunk.OP_DUP:
		v, err := vm.stack.Peek()
		if err != nil {
			return err
		}
		return vm.stack.Push(v)

	case chunk.OP_GET_LOCAL:
		slot := int(vm.readByte(frame))
		return vm.stack.Push(vm.stack.At(frame.SlotBase + slot))
	case chunk.OP_SET_LOCAL:
		return vm.setLocal(frame)
	case chunk.OP_GET_GLOBAL:
		idx := vm.readU16(frame)
		name := frame.Chunk.Consts[idx].Str()
		v, ok := vm.globals.Get(name)
		if !ok {
			return ErrUndefinedGlobal
		}
		return vm.stack.Push(v)
	case chunk.OP_DEFINE_GLOBAL:
		idx := vm.readU16(frame)
		name := frame.Chunk.Consts[idx].Str()
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		vm.globals.Define(name, v)
		vm.bindContainerName(name, v)
		return nil
	case chunk.OP_SET_GLOBAL:
		return vm.setGlobal(frame)

	case chunk.OP_GET_UPVALUE:
		idx := vm.readByte(frame)
		uv, err := vm.upvalueAt(frame, idx)
		if err != nil {
			return err
		}
		return vm.stack.Push(uv.Get(vm.stack))
	case chunk.OP_SET_UPVALUE:
		idx := vm.readByte(frame)
		uv, err := vm.upvalueAt(frame, idx)
		if err != nil {
			return err
		}
		newVal, err := vm.stack.Peek()
		if err != nil {
			return err
		}
		if err := value.CheckMutable(uv.Get(vm.stack)); err != nil {
			return err
		}
		uv.Set(vm.stack, newVal)
		return nil
	case chunk.OP_CLOSE_UPVALUE:
		vm.open.closeFrom(vm.stack.Len()-1, vm.stack)
		_, err := vm.stack.Pop()
		return err

	case chunk.OP_JUMP:
		offset := vm.readU16(frame)
		frame.IP += int(int16(offset))
		return nil
	case chunk.OP_JUMP_IF_FALSE:
		offset := vm.readU16(frame)
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		if !value.IsTruthy(v) {
			frame.IP += int(int16(offset))
		}
		return nil
	case chunk.OP_LOOP:
		offset := vm.readU16(frame)
		frame.IP -= int(offset)
		return nil

	case chunk.OP_CALL:
		return vm.execCall(frame)
	case chunk.OP_RETURN:
		retVal, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		vm.popFrame(frame, retVal)
		return nil

	case chunk.OP_CLOSURE:
		return vm.execClosure(frame)

	case chunk.OP_NEW_ARRAY:
		return vm.execNewArray(frame)
	case chunk.OP_NEW_MAP:
		return vm.execNewMap(frame)
	case chunk.OP_NEW_SET:
		return vm.execNewSet(frame)
	case chunk.OP_INDEX_GET:
		return vm.execIndexGet()
	case chunk.OP_INDEX_SET:
		return vm.execIndexSet()
	case chunk.OP_FIELD_GET:
		return vm.execFieldGet(frame)
	case chunk.OP_FIELD_SET:
		return vm.execFieldSet(frame)

	case chunk.OP_FREEZE:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		return vm.stack.Push(value.Freeze(v))
	case chunk.OP_THAW:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		return vm.stack.Push(value.Thaw(v))
	case chunk.OP_PHASE_OF:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		return vm.stack.Push(value.NewStr(v.Phase().String()))

	case chunk.OP_TRY_BEGIN:
		offset := vm.readU16(frame)
		catchIP := frame.IP + int(int16(offset))
		frame.pushTry(catchIP, vm.stack.Len())
		return nil
	case chunk.OP_TRY_END:
		frame.popTry()
		return nil
	case chunk.OP_THROW:
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		return &thrownError{val: v}

	default:
		return ErrMalformedChunk
	}
}

func (vm *VM) upvalueAt(frame *CallFrame, idx byte) (*Upvalue, error) {
	if frame.Closure == nil || int(idx) >= len(frame.Closure.Upvalues) {
		return nil, ErrMalformedChunk
	}
	uv, ok := frame.Closure.Upvalues[idx].(*Upvalue)
	if !ok {
		return nil, ErrMalformedChunk
	}
	return uv, nil
}

func (vm *VM) setLocal(frame *CallFrame) error {
	slot := int(vm.readByte(frame))
	newVal, err := vm.stack.Peek()
	if err != nil {
		return err
	}
	old := vm.stack.At(frame.SlotBase + slot)
	if err := value.CheckMutable(old); err != nil {
		return err
	}
	vm.stack.SetAt(frame.SlotBase+slot, newVal)
	if name := localName(frame.Chunk, slot); name != "" {
		vm.bindContainerName(name, newVal)
		return vm.afterStore(name, old, newVal, frameAccessor{vm, frame})
	}
	return nil
}

func (vm *VM) setGlobal(frame *CallFrame) error {
	idx := vm.readU16(frame)
	name := frame.Chunk.Consts[idx].Str()
	newVal, err := vm.stack.Peek()
	if err != nil {
		return err
	}
	old, hadOld := vm.globals.Get(name)
	if hadOld {
		if err := value.CheckMutable(old); err != nil {
			return err
		}
	}
	if !vm.globals.SetExisting(name, newVal) {
		return ErrUndefinedGlobal
	}
	vm.bindContainerName(name, newVal)
	return vm.afterStore(name, old, newVal, frameAccessor{vm, frame})
}

// bindContainerName records name as the current binding for newVal's
// container identity, if it has one (spec §4.5's pressure registry is
// name-keyed, but container-mutating opcodes only ever see the
// container value itself — this is how execIndexSet resolves the two).
// A no-op for scalar values.
func (vm *VM) bindContainerName(name string, v value.Value) {
	id, ok := v.ContainerIdentity()
	vm.rt.BindContainer(name, id, ok)
}

// afterStore fires the phase-transition side effects a plain rebind of
// name triggers (spec §4.5): history recording for every write to a
// tracked variable, reactions on any change of phase, and the bond
// cascade only on a transition into the crystal phase. SET_UPVALUE
// deliberately bypasses this — track/bond/seed/pressure are name-keyed
// services scoped to the global environment and a frame's locals, not
// to captured upvalue cells.
func (vm *VM) afterStore(name string, old, newVal value.Value, acc runtime.VarAccessor) error {
	if vm.rt.IsTracked(name) {
		vm.rt.RecordHistory(name, newVal, 0, "")
	}
	if old.Phase() == newVal.Phase() {
		return nil
	}
	if err := vm.rt.FireReactions(name, newVal.Phase(), newVal); err != nil {
		return err
	}
	if newVal.Phase() == value.Crystal {
		return vm.rt.Cascade(name, acc)
	}
	return nil
}

func (vm *VM) execCall(frame *CallFrame) error {
	argc := int(vm.readByte(frame))
	argsBase := vm.stack.Len() - argc
	calleeIdx := argsBase - 1
	callee := vm.stack.At(calleeIdx)
	args := make([]value.Value, argc)
	for i := 0; i < argc; i++ {
		args[i] = vm.stack.At(argsBase + i)
	}
	return vm.call(callee, args, calleeIdx)
}

// call dispatches callee across the three closure kinds (spec §4.4,
// §4.6) and lands its bound arguments starting at baseIdx — the stack
// slot the callee itself occupied, so a compiled callee's SlotBase
// reclaims that slot as its first local rather than leaking it.
func (vm *VM) call(callee value.Value, args []value.Value, baseIdx int) error {
	if callee.Variant() != value.VClosure || callee.ClosureVal() == nil {
		return ErrNotCallable
	}
	cl := callee.ClosureVal()

	switch cl.Dispatch.Kind {
	case value.DispatchCompiled:
		bound, err := bindArgs(cl, args)
		if err != nil {
			return err
		}
		for i, ph := range cl.ParamPhases {
			if ph != value.Unphased && i < len(bound) && bound[i].Phase() != ph {
				return ErrPhaseMismatch
			}
		}

		sub, ok := cl.Dispatch.Chunk.(*chunk.Chunk)
		if !ok {
			return ErrMalformedChunk
		}
		if len(vm.frames) >= maxFrames {
			return ErrFrameOverflow
		}
		vm.stack.TruncateTo(baseIdx)
		for _, a := range bound {
			if err := vm.stack.Push(a); err != nil {
				return err
			}
		}
		vm.frames = append(vm.frames, &CallFrame{Chunk: sub, SlotBase: baseIdx, Closure: cl})
		return nil

	case value.DispatchNative, value.DispatchExtension:
		// Native and extension functions are handed the raw argument
		// list (spec §4.4: "pop the arguments into a contiguous
		// buffer"), not run through bindArgs's compiled-closure
		// defaults/variadic-packing machinery — Params/Variadic on
		// these closures exist only to describe arity to callers, not
		// to reshape the call.
		result, err := cl.Dispatch.Fn(args)
		if err != nil {
			return err
		}
		vm.stack.TruncateTo(baseIdx)
		return vm.stack.Push(result)

	default:
		return ErrNotCallable
	}
}

// bindArgs resolves args against cl's declared parameter list, filling
// missing trailing parameters from Defaults and collecting any surplus
// into the final parameter as an Array when cl is variadic. Combining
// defaults with a variadic tail is not spelled out by the reference
// grammar; this resolves it the simplest coherent way: defaults apply
// only to the fixed (non-collector) parameters.
func bindArgs(cl *value.Closure, args []value.Value) ([]value.Value, error) {
	n := len(cl.Params)
	if !cl.Variadic {
		required := n - len(cl.Defaults)
		if len(args) < required || len(args) > n {
			return nil, ErrArity
		}
		bound := make([]value.Value, n)
		copy(bound, args)
		for i := len(args); i < n; i++ {
			bound[i] = cl.Defaults[i-required]
		}
		return bound, nil
	}

	if n == 0 {
		return nil, ErrMalformedChunk
	}
	fixed := n - 1
	required := fixed - len(cl.Defaults)
	if len(args) < required {
		return nil, ErrArity
	}
	bound := make([]value.Value, n)
	for i := 0; i < fixed; i++ {
		if i < len(args) {
			bound[i] = args[i]
		} else {
			bound[i] = cl.Defaults[i-required]
		}
	}
	var rest []value.Value
	if len(args) > fixed {
		rest = append(rest, args[fixed:]...)
	}
	bound[fixed] = value.NewArray(rest)
	return bound, nil
}

// closureSiteIndex returns the program-order index of the OP_CLOSURE
// instruction at targetOffset among all such instructions in c.Code,
// matching the order the compiler appended to c.Upvalues.
func closureSiteIndex(c *chunk.Chunk, targetOffset int) int {
	i, site := 0, 0
	for i < len(c.Code) {
		if i == targetOffset {
			return site
		}
		op := chunk.OpCode(c.Code[i])
		i += 1 + chunk.OperandWidth(op)
		if op == chunk.OP_CLOSURE {
			site++
		}
	}
	return site
}

func (vm *VM) execClosure(frame *CallFrame) error {
	opOffset := frame.IP - 1
	idx := vm.readU16(frame)
	template := frame.Chunk.Consts[idx].ClosureVal()
	if template == nil {
		return ErrMalformedChunk
	}
	site := closureSiteIndex(frame.Chunk, opOffset)
	var descriptors []chunk.UpvalueDescriptor
	if site < len(frame.Chunk.Upvalues) {
		descriptors = frame.Chunk.Upvalues[site]
	}
	ups := make([]any, len(descriptors))
	for i, d := range descriptors {
		if d.IsLocal {
			ups[i] = vm.open.findOrCreate(frame.SlotBase + int(d.Index))
		} else {
			if frame.Closure == nil || int(d.Index) >= len(frame.Closure.Upvalues) {
				return ErrMalformedChunk
			}
			ups[i] = frame.Closure.Upvalues[d.Index]
		}
	}
	cl := &value.Closure{
		Name:        template.Name,
		Params:      template.Params,
		ParamPhases: template.ParamPhases,
		Defaults:    template.Defaults,
		Variadic:    template.Variadic,
		Dispatch:    template.Dispatch,
		Upvalues:    ups,
	}
	return vm.stack.Push(value.NewClosure(cl))
}

func (vm *VM) execNewArray(frame *CallFrame) error {
	count := int(vm.readByte(frame))
	elems := make([]value.Value, count)
	for i := count - 1; i >= 0; i-- {
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		elems[i] = v
	}
	return vm.stack.Push(value.NewArray(elems))
}

func (vm *VM) execNewMap(frame *CallFrame) error {
	pairCount := int(vm.readByte(frame))
	type pair struct{ k, v value.Value }
	pairs := make([]pair, pairCount)
	for i := pairCount - 1; i >= 0; i-- {
		val, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		key, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		pairs[i] = pair{k: key, v: val}
	}
	m := value.NewOrderedMap()
	for _, p := range pairs {
		m.Set(p.k.Str(), p.v)
	}
	return vm.stack.Push(value.NewMap(m))
}

func (vm *VM) execNewSet(frame *CallFrame) error {
	count := int(vm.readByte(frame))
	elems := make([]value.Value, count)
	for i := count - 1; i >= 0; i-- {
		v, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		elems[i] = v
	}
	s := value.NewOrderedSet()
	for _, e := range elems {
		s.Add(e)
	}
	return vm.stack.Push(value.NewSet(s))
}

func (vm *VM) execIndexGet() error {
	idx, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	container, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	result, err := indexGet(container, idx)
	if err != nil {
		return err
	}
	return vm.stack.Push(result)
}

func indexGet(container, idx value.Value) (value.Value, error) {
	switch container.Variant() {
	case value.VArray:
		arr := container.Array()
		i := int(idx.Int())
		if i < 0 || i >= len(arr) {
			return value.Value{}, value.ErrIndexOutOfRange
		}
		return arr[i], nil
	case value.VMap:
		if container.Map() == nil {
			return value.Value{}, value.ErrIndexOutOfRange
		}
		v, ok := container.Map().Get(idx.Str())
		if !ok {
			return value.Value{}, value.ErrIndexOutOfRange
		}
		return v, nil
	case value.VBuffer:
		buf := container.Buffer()
		i := int(idx.Int())
		if i < 0 || i >= len(buf) {
			return value.Value{}, value.ErrIndexOutOfRange
		}
		return value.NewInt(int64(buf[i])), nil
	case value.VStr:
		s := container.Str()
		i := int(idx.Int())
		if i < 0 || i >= len(s) {
			return value.Value{}, value.ErrIndexOutOfRange
		}
		return value.NewStr(string(s[i])), nil
	default:
		return value.Value{}, value.ErrTypeError
	}
}

func (vm *VM) execIndexSet() error {
	val, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	idx, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	container, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	if err := value.CheckMutable(container); err != nil {
		return err
	}
	if err := vm.checkContainerPressure(container, idx); err != nil {
		return err
	}
	if err := indexSet(container, idx, val); err != nil {
		return err
	}
	return vm.stack.Push(val)
}

// checkContainerPressure consults the pressure registry for the name
// currently bound to container, if any (spec §4.5: "consulted by
// container-mutating opcodes (INDEX_SET on Array/Map, map insert/
// delete, array push/pop) to reject operations that would violate the
// declared invariant"). Array and Buffer INDEX_SET are always bounds-
// checked in place and never change size, so only a Map insert of a
// previously-absent key can actually grow — but the check runs
// uniformly for every container kind rather than special-casing Map.
func (vm *VM) checkContainerPressure(container, idx value.Value) error {
	id, ok := container.ContainerIdentity()
	if !ok {
		return nil
	}
	name, ok := vm.rt.ContainerName(id)
	if !ok {
		return nil
	}
	before, after := containerSizeDelta(container, idx)
	return vm.rt.CheckPressure(name, runtime.ContainerDelta{SizeBefore: before, SizeAfter: after})
}

// containerSizeDelta reports the size container would have before and
// after the pending INDEX_SET. Only a Map insert of a new key changes
// size; Array and Buffer index assignment is bounds-checked elsewhere
// and always replaces an existing element in place.
func containerSizeDelta(container, idx value.Value) (before, after int) {
	switch container.Variant() {
	case value.VMap:
		m := container.Map()
		if m == nil {
			return 0, 0
		}
		before = m.Len()
		after = before
		if _, exists := m.Get(idx.Str()); !exists {
			after = before + 1
		}
		return before, after
	case value.VArray:
		n := len(container.Array())
		return n, n
	case value.VBuffer:
		n := len(container.Buffer())
		return n, n
	default:
		return 0, 0
	}
}

func indexSet(container, idx, val value.Value) error {
	switch container.Variant() {
	case value.VArray:
		arr := container.Array()
		i := int(idx.Int())
		if i < 0 || i >= len(arr) {
			return value.ErrIndexOutOfRange
		}
		arr[i] = val
		return nil
	case value.VMap:
		if container.Map() == nil {
			return value.ErrTypeError
		}
		container.Map().Set(idx.Str(), val)
		return nil
	case value.VBuffer:
		buf := container.Buffer()
		i := int(idx.Int())
		if i < 0 || i >= len(buf) {
			return value.ErrIndexOutOfRange
		}
		buf[i] = byte(val.Int())
		return nil
	default:
		return value.ErrTypeError
	}
}

func (vm *VM) execFieldGet(frame *CallFrame) error {
	idx := vm.readU16(frame)
	name := frame.Chunk.Consts[idx].Str()
	obj, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	s := obj.Struct()
	if obj.Variant() != value.VStruct || s == nil {
		return value.ErrTypeError
	}
	for i, f := range s.Fields {
		if f == name {
			return vm.stack.Push(s.Values[i])
		}
	}
	return value.ErrUnknownField
}

func (vm *VM) execFieldSet(frame *CallFrame) error {
	idx := vm.readU16(frame)
	name := frame.Chunk.Consts[idx].Str()
	val, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	obj, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	if err := value.CheckMutable(obj); err != nil {
		return err
	}
	s := obj.Struct()
	if obj.Variant() != value.VStruct || s == nil {
		return value.ErrTypeError
	}
	for i, f := range s.Fields {
		if f == name {
			s.Values[i] = val
			return vm.stack.Push(val)
		}
	}
	s.Fields = append(s.Fields, name)
	s.Values = append(s.Values, val)
	return vm.stack.Push(val)
}

func (vm *VM) binaryArith(op chunk.OpCode) error {
	b, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	result, err := arith(op, a, b)
	if err != nil {
		return err
	}
	return vm.stack.Push(result)
}

func isNumeric(v value.Value) bool {
	return v.Variant() == value.VInt || v.Variant() == value.VFloat
}

func toFloat(v value.Value) float64 {
	if v.Variant() == value.VInt {
		return float64(v.Int())
	}
	return v.Float()
}

func arith(op chunk.OpCode, a, b value.Value) (value.Value, error) {
	if op == chunk.OP_ADD && a.Variant() == value.VStr && b.Variant() == value.VStr {
		return value.NewStr(a.Str() + b.Str()), nil
	}
	if a.Variant() == value.VInt && b.Variant() == value.VInt {
		x, y := a.Int(), b.Int()
		switch op {
		case chunk.OP_ADD:
			return value.NewInt(x + y), nil
		case chunk.OP_SUB:
			return value.NewInt(x - y), nil
		case chunk.OP_MUL:
			return value.NewInt(x * y), nil
		case chunk.OP_DIV:
			if y == 0 {
				return value.Value{}, value.ErrDivisionByZero
			}
			return value.NewInt(x / y), nil
		case chunk.OP_MOD:
			if y == 0 {
				return value.Value{}, value.ErrDivisionByZero
			}
			return value.NewInt(x % y), nil
		}
	}
	if isNumeric(a) && isNumeric(b) {
		x, y := toFloat(a), toFloat(b)
		switch op {
		case chunk.OP_ADD:
			return value.NewFloat(x + y), nil
		case chunk.OP_SUB:
			return value.NewFloat(x - y), nil
		case chunk.OP_MUL:
			return value.NewFloat(x * y), nil
		case chunk.OP_DIV:
			return value.NewFloat(x / y), nil
		case chunk.OP_MOD:
			return value.NewFloat(math.Mod(x, y)), nil
		}
	}
	return value.Value{}, value.ErrTypeError
}

func (vm *VM) compare(op chunk.OpCode) error {
	b, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	switch op {
	case chunk.OP_EQ:
		return vm.stack.Push(value.NewBool(value.Equals(a, b)))
	case chunk.OP_NEQ:
		return vm.stack.Push(value.NewBool(!value.Equals(a, b)))
	}
	if !isNumeric(a) || !isNumeric(b) {
		return value.ErrTypeError
	}
	x, y := toFloat(a), toFloat(b)
	var result bool
	switch op {
	case chunk.OP_LT:
		result = x < y
	case chunk.OP_GT:
		result = x > y
	case chunk.OP_LE:
		result = x <= y
	case chunk.OP_GE:
		result = x >= y
	}
	return vm.stack.Push(value.NewBool(result))
}

// callSync invokes callee synchronously and returns its result,
// re-entering the dispatch loop if it is a compiled closure. It is the
// mechanism backing invokeClosure (reactions, seed contracts) and the
// builtins that need the same capability (native-only, no compiled
// frame to wait on, so those simply call Dispatch.Fn directly instead).
func (vm *VM) callSync(callee value.Value, args []value.Value) (value.Value, error) {
	calleeIdx := vm.stack.Len()
	if err := vm.stack.Push(callee); err != nil {
		return value.Value{}, err
	}
	for _, a := range args {
		if err := vm.stack.Push(a); err != nil {
			return value.Value{}, err
		}
	}
	depthBefore := len(vm.frames)
	if err := vm.call(callee, args, calleeIdx); err != nil {
		vm.stack.TruncateTo(calleeIdx)
		return value.Value{}, err
	}
	if len(vm.frames) > depthBefore {
		result, err := vm.run(depthBefore)
		// run's nested frame returns via popFrame, which (since this
		// caller frame still exists) pushes the result at calleeIdx —
		// reclaim it here since callSync hands the result back as a Go
		// value, not as something left on the operand stack.
		vm.stack.TruncateTo(calleeIdx)
		if err != nil {
			return value.Value{}, err
		}
		return result, nil
	}
	result := vm.stack.At(calleeIdx)
	vm.stack.TruncateTo(calleeIdx)
	return result, nil
}

// invokeClosure is the runtime.ClosureInvoker this VM hands to its
// Runtime at construction time (spec §9 design note: lexical capture in
// place of a thread-local current-runtime pointer).
func (vm *VM) invokeClosure(cl *value.Closure, args []value.Value) (value.Value, error) {
	return vm.callSync(value.NewClosure(cl), args)
}
