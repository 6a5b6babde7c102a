package vm

import (
	"testing"

	"github.com/lattice-lang/lattice/internal/chunk"
	"github.com/lattice-lang/lattice/internal/runtime"
	"github.com/lattice-lang/lattice/internal/value"
)

func emitConst(c *chunk.Chunk, v value.Value) {
	idx := c.AddConst(v)
	c.Emit(chunk.OP_CONST, 1)
	c.EmitU16(uint16(idx), 1)
}

func emitByteOp(c *chunk.Chunk, op chunk.OpCode, operand byte) {
	c.Emit(op, 1)
	c.EmitByte(operand, 1)
}

func emitGlobalOp(c *chunk.Chunk, op chunk.OpCode, name string) {
	idx := c.AddConst(value.NewStr(name))
	c.Emit(op, 1)
	c.EmitU16(uint16(idx), 1)
}

func TestArithmeticPrecedence(t *testing.T) {
	c := chunk.New("")
	emitConst(c, value.NewInt(2))
	emitConst(c, value.NewInt(3))
	emitConst(c, value.NewInt(4))
	c.Emit(chunk.OP_MUL, 1)
	c.Emit(chunk.OP_ADD, 1)
	c.Emit(chunk.OP_RETURN, 1)

	result, err := New().Run(c)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Int() != 14 {
		t.Fatalf("2+3*4 = %d, want 14", result.Int())
	}
}

func TestCallCompiledClosure(t *testing.T) {
	add := chunk.New("add")
	add.Params = []string{"a", "b"}
	add.LocalNames = []string{"a", "b"}
	emitByteOp(add, chunk.OP_GET_LOCAL, 0)
	emitByteOp(add, chunk.OP_GET_LOCAL, 1)
	add.Emit(chunk.OP_ADD, 1)
	add.Emit(chunk.OP_RETURN, 1)

	top := chunk.New("")
	vmachine := New()
	vmachine.Globals().Define("add", value.NewClosure(&value.Closure{
		Name:     "add",
		Params:   add.Params,
		Dispatch: value.Dispatch{Kind: value.DispatchCompiled, Chunk: add},
	}))

	emitGlobalOp(top, chunk.OP_GET_GLOBAL, "add")
	emitConst(top, value.NewInt(3))
	emitConst(top, value.NewInt(4))
	emitByteOp(top, chunk.OP_CALL, 2)
	top.Emit(chunk.OP_RETURN, 1)

	result, err := vmachine.Run(top)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Int() != 7 {
		t.Fatalf("add(3,4) = %d, want 7", result.Int())
	}
	if vmachine.stack.Len() != 0 {
		t.Fatalf("stack imbalance after call: depth %d, want 0", vmachine.stack.Len())
	}
}

func TestArityMismatchIsUncaught(t *testing.T) {
	add := chunk.New("add")
	add.Params = []string{"a", "b"}
	add.Emit(chunk.OP_NIL, 1)
	add.Emit(chunk.OP_RETURN, 1)

	top := chunk.New("")
	vmachine := New()
	vmachine.Globals().Define("add", value.NewClosure(&value.Closure{
		Name: "add", Params: add.Params,
		Dispatch: value.Dispatch{Kind: value.DispatchCompiled, Chunk: add},
	}))
	emitGlobalOp(top, chunk.OP_GET_GLOBAL, "add")
	emitConst(top, value.NewInt(1))
	emitByteOp(top, chunk.OP_CALL, 1)
	top.Emit(chunk.OP_RETURN, 1)

	if _, err := vmachine.Run(top); err != ErrArity {
		t.Fatalf("expected ErrArity, got %v", err)
	}
}

func TestFreezeThenStoreIsPhaseViolation(t *testing.T) {
	top := chunk.New("")
	emitConst(top, value.NewInt(1))
	emitGlobalOp(top, chunk.OP_DEFINE_GLOBAL, "x")

	emitGlobalOp(top, chunk.OP_GET_GLOBAL, "x")
	top.Emit(chunk.OP_FREEZE, 1)
	emitGlobalOp(top, chunk.OP_SET_GLOBAL, "x")
	top.Emit(chunk.OP_POP, 1)

	emitConst(top, value.NewInt(2))
	emitGlobalOp(top, chunk.OP_SET_GLOBAL, "x")
	top.Emit(chunk.OP_RETURN, 1)

	if _, err := New().Run(top); err != value.ErrPhaseViolation {
		t.Fatalf("expected ErrPhaseViolation, got %v", err)
	}
}

func TestTryCatchRecoversFromThrow(t *testing.T) {
	top := chunk.New("")
	top.Emit(chunk.OP_TRY_BEGIN, 1)
	catchPatch := len(top.Code)
	top.EmitU16(0, 1)

	emitConst(top, value.NewStr("boom"))
	top.Emit(chunk.OP_THROW, 1)

	top.PatchU16(catchPatch, uint16(len(top.Code)-catchPatch-2))
	top.Emit(chunk.OP_RETURN, 1)

	result, err := New().Run(top)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Str() != "boom" {
		t.Fatalf("catch should bind the thrown value, got %v", result)
	}
}

func TestTrackAndPhasesBuiltins(t *testing.T) {
	top := chunk.New("")
	emitConst(top, value.NewInt(1))
	emitGlobalOp(top, chunk.OP_DEFINE_GLOBAL, "x")

	emitGlobalOp(top, chunk.OP_GET_GLOBAL, "track")
	emitConst(top, value.NewStr("x"))
	emitByteOp(top, chunk.OP_CALL, 1)
	top.Emit(chunk.OP_POP, 1)

	emitConst(top, value.NewInt(2))
	emitGlobalOp(top, chunk.OP_SET_GLOBAL, "x")
	top.Emit(chunk.OP_POP, 1)

	emitConst(top, value.NewInt(3))
	emitGlobalOp(top, chunk.OP_SET_GLOBAL, "x")
	top.Emit(chunk.OP_POP, 1)

	emitGlobalOp(top, chunk.OP_GET_GLOBAL, "phases")
	emitConst(top, value.NewStr("x"))
	emitByteOp(top, chunk.OP_CALL, 1)
	top.Emit(chunk.OP_RETURN, 1)

	result, err := New().Run(top)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Array()) != 3 {
		t.Fatalf("len(phases(x)) = %d, want 3 (initial + two writes)", len(result.Array()))
	}
}

func TestNativeCallGetsRawArgsNotVariadicWrapped(t *testing.T) {
	top := chunk.New("")
	emitGlobalOp(top, chunk.OP_GET_GLOBAL, "len")
	emitConst(top, value.NewInt(1))
	emitConst(top, value.NewInt(2))
	emitConst(top, value.NewInt(3))
	emitByteOp(top, chunk.OP_NEW_ARRAY, 3)
	emitByteOp(top, chunk.OP_CALL, 1)
	top.Emit(chunk.OP_RETURN, 1)

	result, err := New().Run(top)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Int() != 3 {
		t.Fatalf("len([1,2,3]) = %d, want 3 (bindArgs must not re-wrap native args in an Array)", result.Int())
	}
}

func TestNativeCallOnStringGetsRawArg(t *testing.T) {
	top := chunk.New("")
	emitGlobalOp(top, chunk.OP_GET_GLOBAL, "len")
	emitConst(top, value.NewStr("hi"))
	emitByteOp(top, chunk.OP_CALL, 1)
	top.Emit(chunk.OP_RETURN, 1)

	result, err := New().Run(top)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Int() != 2 {
		t.Fatalf("len(\"hi\") = %d, want 2", result.Int())
	}
}

func TestPressureNoGrowRejectsMapInsert(t *testing.T) {
	top := chunk.New("")
	emitByteOp(top, chunk.OP_NEW_MAP, 0)
	emitGlobalOp(top, chunk.OP_DEFINE_GLOBAL, "m")

	emitGlobalOp(top, chunk.OP_GET_GLOBAL, "pressurize")
	emitConst(top, value.NewStr("m"))
	emitConst(top, value.NewStr("no_grow"))
	emitByteOp(top, chunk.OP_CALL, 2)
	top.Emit(chunk.OP_POP, 1)

	emitGlobalOp(top, chunk.OP_GET_GLOBAL, "m")
	emitConst(top, value.NewStr("newkey"))
	emitConst(top, value.NewInt(1))
	top.Emit(chunk.OP_INDEX_SET, 1)
	top.Emit(chunk.OP_RETURN, 1)

	if _, err := New().Run(top); err != runtime.ErrPressureNoGrow {
		t.Fatalf("expected ErrPressureNoGrow inserting into a no_grow map, got %v", err)
	}
}

func TestPressureNoGrowAllowsExistingKeyUpdate(t *testing.T) {
	top := chunk.New("")
	emitConst(top, value.NewStr("k"))
	emitConst(top, value.NewInt(1))
	emitByteOp(top, chunk.OP_NEW_MAP, 1)
	emitGlobalOp(top, chunk.OP_DEFINE_GLOBAL, "m")

	emitGlobalOp(top, chunk.OP_GET_GLOBAL, "pressurize")
	emitConst(top, value.NewStr("m"))
	emitConst(top, value.NewStr("no_grow"))
	emitByteOp(top, chunk.OP_CALL, 2)
	top.Emit(chunk.OP_POP, 1)

	emitGlobalOp(top, chunk.OP_GET_GLOBAL, "m")
	emitConst(top, value.NewStr("k"))
	emitConst(top, value.NewInt(2))
	top.Emit(chunk.OP_INDEX_SET, 1)
	top.Emit(chunk.OP_RETURN, 1)

	if _, err := New().Run(top); err != nil {
		t.Fatalf("updating an existing key under no_grow should not be rejected, got %v", err)
	}
}

func TestIndexSetOnCrystalArrayFails(t *testing.T) {
	top := chunk.New("")
	emitConst(top, value.NewInt(1))
	emitByteOp(top, chunk.OP_NEW_ARRAY, 1)
	emitGlobalOp(top, chunk.OP_DEFINE_GLOBAL, "xs")

	emitGlobalOp(top, chunk.OP_GET_GLOBAL, "xs")
	top.Emit(chunk.OP_FREEZE, 1)
	emitGlobalOp(top, chunk.OP_SET_GLOBAL, "xs")
	top.Emit(chunk.OP_POP, 1)

	emitGlobalOp(top, chunk.OP_GET_GLOBAL, "xs")
	emitConst(top, value.NewInt(0))
	emitConst(top, value.NewInt(9))
	top.Emit(chunk.OP_INDEX_SET, 1)
	top.Emit(chunk.OP_RETURN, 1)

	if _, err := New().Run(top); err != value.ErrPhaseViolation {
		t.Fatalf("expected ErrPhaseViolation on crystal array index-set, got %v", err)
	}
}
