package chunk

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/lattice-lang/lattice/internal/value"
)

// magic is the fixed prefix identifying a persisted Lattice chunk file
// (spec §6). The format is implementation-local and not required to
// remain stable across versions (spec §1 non-goals).
var magic = [4]byte{'L', 'A', 'T', 0x01}

const formatVersion uint16 = 1

// constant-pool tag bytes (spec §6: "each entry prefixed by a 1-byte
// variant tag and length-prefixed payload").
const (
	tagNil byte = iota
	tagBool
	tagInt
	tagFloat
	tagStr
)

// ErrVersionMismatch is returned by Load when the persisted format
// version does not match formatVersion (spec §6: "Load rejects any
// version mismatch").
const ErrVersionMismatch = value.ConstError("lattice: bytecode format version mismatch")

// ErrBadMagic is returned by Load when the leading magic bytes are
// absent or corrupt.
const ErrBadMagic = value.ConstError("lattice: not a lattice bytecode file")

// Save serializes c into the persisted chunk layout of spec §6: magic,
// version, constant pool, defaults, variadic flag, phase constraints,
// local-name table, opcode stream, line table, and finally the chunk
// name.
func Save(c *Chunk) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(magic[:])
	_ = binary.Write(&buf, binary.BigEndian, formatVersion)

	writeU32(&buf, uint32(len(c.Consts)))
	for _, v := range c.Consts {
		if err := writeConst(&buf, v); err != nil {
			return nil, err
		}
	}

	writeU32(&buf, uint32(len(c.Defaults)))
	for _, v := range c.Defaults {
		if err := writeConst(&buf, v); err != nil {
			return nil, err
		}
	}

	if c.Variadic {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	writeU32(&buf, uint32(len(c.ParamPhases)))
	for _, p := range c.ParamPhases {
		buf.WriteByte(byte(p))
	}

	writeU32(&buf, uint32(len(c.LocalNames)))
	for _, n := range c.LocalNames {
		writeString(&buf, n)
	}

	writeU32(&buf, uint32(len(c.Code)))
	buf.Write(c.Code)

	writeU32(&buf, uint32(len(c.Lines)))
	for _, l := range c.Lines {
		_ = binary.Write(&buf, binary.BigEndian, l)
	}

	writeString(&buf, c.Name)

	return buf.Bytes(), nil
}

// Load deserializes a chunk previously produced by Save.
func Load(data []byte) (*Chunk, error) {
	r := bytes.NewReader(data)

	var gotMagic [4]byte
	if _, err := r.Read(gotMagic[:]); err != nil || gotMagic != magic {
		return nil, ErrBadMagic
	}
	var version uint16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, ErrVersionMismatch
	}

	c := New("")

	nConsts, err := readU32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nConsts; i++ {
		v, err := readConst(r)
		if err != nil {
			return nil, err
		}
		c.AddConst(v)
	}

	nDefaults, err := readU32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nDefaults; i++ {
		v, err := readConst(r)
		if err != nil {
			return nil, err
		}
		c.Defaults = append(c.Defaults, v)
	}

	variadicByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	c.Variadic = variadicByte != 0

	nPhases, err := readU32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nPhases; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		c.ParamPhases = append(c.ParamPhases, value.Phase(b))
	}

	nLocals, err := readU32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nLocals; i++ {
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		c.LocalNames = append(c.LocalNames, s)
	}

	nCode, err := readU32(r)
	if err != nil {
		return nil, err
	}
	code := make([]byte, nCode)
	if _, err := r.Read(code); err != nil {
		return nil, err
	}
	c.Code = code

	nLines, err := readU32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nLines; i++ {
		var l int32
		if err := binary.Read(r, binary.BigEndian, &l); err != nil {
			return nil, err
		}
		c.Lines = append(c.Lines, l)
	}

	name, err := readString(r)
	if err != nil {
		return nil, err
	}
	c.Name = name

	return c, nil
}

func writeU32(buf *bytes.Buffer, v uint32) { _ = binary.Write(buf, binary.BigEndian, v) }

func readU32(r *bytes.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(b); err != nil {
			return "", err
		}
	}
	return string(b), nil
}

func writeConst(buf *bytes.Buffer, v value.Value) error {
	switch v.Variant() {
	case value.VNil:
		buf.WriteByte(tagNil)
	case value.VBool:
		buf.WriteByte(tagBool)
		if v.Bool() {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case value.VInt:
		buf.WriteByte(tagInt)
		_ = binary.Write(buf, binary.BigEndian, v.Int())
	case value.VFloat:
		buf.WriteByte(tagFloat)
		_ = binary.Write(buf, binary.BigEndian, v.Float())
	case value.VStr:
		buf.WriteByte(tagStr)
		writeString(buf, v.Str())
	default:
		return fmt.Errorf("lattice: constant pool entries must be scalar, got %v", v.Variant())
	}
	return nil
}

func readConst(r *bytes.Reader) (value.Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return value.Value{}, err
	}
	switch tag {
	case tagNil:
		return value.NewNil(), nil
	case tagBool:
		b, err := r.ReadByte()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewBool(b != 0), nil
	case tagInt:
		var i int64
		if err := binary.Read(r, binary.BigEndian, &i); err != nil {
			return value.Value{}, err
		}
		return value.NewInt(i), nil
	case tagFloat:
		var f float64
		if err := binary.Read(r, binary.BigEndian, &f); err != nil {
			return value.Value{}, err
		}
		return value.NewFloat(f), nil
	case tagStr:
		s, err := readString(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewStr(s), nil
	default:
		return value.Value{}, fmt.Errorf("lattice: unknown constant tag %d", tag)
	}
}
