package ir

import (
	"strconv"
)

// TypeManager interns types so that structurally identical types are
// represented by a single pointer and can be compared with ==.
type TypeManager struct {
	types   []Type
	typeMap map[string]Type
	keyBuf  []byte // reusable buffer for building type keys
}

// NewTypeManager creates a new, empty type manager.
func NewTypeManager() *TypeManager {
	return &TypeManager{
		types:   make([]Type, 0, 16),
		typeMap: make(map[string]Type, 16),
		keyBuf:  make([]byte, 0, 64),
	}
}

// getOrCreate returns the existing type for key, or registers t under it.
func (m *TypeManager) getOrCreate(key string, t Type) Type {
	if existing, ok := m.typeMap[key]; ok {
		return existing
	}
	m.types = append(m.types, t)
	m.typeMap[key] = t
	return t
}

// key creates a unique key for a type based on its structure.
// Element types are already interned, so their textual form is unique,
// except for structs which are keyed by name.
func (m *TypeManager) key(t Type) string {
	b := m.keyBuf[:0]

	switch t := t.(type) {
	case *VoidType:
		return "void"

	case *ScalarType:
		b = append(b, "scalar:"...)
		b = strconv.AppendInt(b, int64(t.Kind), 10)
		b = append(b, ':')
		b = strconv.AppendUint(b, uint64(t.Width), 10)
		m.keyBuf = b
		return string(b)

	case *VectorType:
		return "vec:" + strconv.FormatUint(uint64(t.Size), 10) + ":" + t.Elem.String()

	case *MatrixType:
		return "mat:" + strconv.FormatUint(uint64(t.Columns), 10) + "x" + strconv.FormatUint(uint64(t.Rows), 10) + ":" + t.Elem.String()

	case *ArrayType:
		return "array:" + t.Elem.String() + ":" + strconv.FormatUint(uint64(t.Count), 10)

	case *StructType:
		return "struct:" + t.Name

	case *PointerType:
		return "ptr:" + strconv.Itoa(int(t.Space)) + ":" + t.StoreType.String() + ":" + strconv.Itoa(int(t.Access))

	case *SamplerType:
		if t.Comparison {
			return "sampler:true"
		}
		return "sampler:false"

	case *SampledTextureType:
		return "texture:" + strconv.Itoa(int(t.Dim)) + ":" + t.Elem.String()

	default:
		bug("unknown type %T", t)
		return ""
	}
}

func (m *TypeManager) intern(t Type) Type {
	return m.getOrCreate(m.key(t), t)
}

// Void returns the void type.
func (m *TypeManager) Void() *VoidType {
	return m.intern(&VoidType{}).(*VoidType)
}

// Bool returns the bool type.
func (m *TypeManager) Bool() *ScalarType {
	return m.Scalar(ScalarBool, 1)
}

// I32 returns the i32 type.
func (m *TypeManager) I32() *ScalarType {
	return m.Scalar(ScalarSint, 4)
}

// U32 returns the u32 type.
func (m *TypeManager) U32() *ScalarType {
	return m.Scalar(ScalarUint, 4)
}

// F32 returns the f32 type.
func (m *TypeManager) F32() *ScalarType {
	return m.Scalar(ScalarFloat, 4)
}

// Scalar returns the scalar type of the given kind and byte width.
func (m *TypeManager) Scalar(kind ScalarKind, width uint8) *ScalarType {
	return m.intern(&ScalarType{Kind: kind, Width: width}).(*ScalarType)
}

// Vec returns the vector type vecN<el>.
func (m *TypeManager) Vec(size VectorSize, el *ScalarType) *VectorType {
	return m.intern(&VectorType{Size: size, Elem: el}).(*VectorType)
}

// Mat returns the matrix type matCxR<f32>.
func (m *TypeManager) Mat(columns, rows VectorSize) *MatrixType {
	return m.intern(&MatrixType{Columns: columns, Rows: rows, Elem: m.F32()}).(*MatrixType)
}

// Array returns the array type array<el, count>. A zero count yields a
// runtime-sized array.
func (m *TypeManager) Array(el Type, count uint32) *ArrayType {
	return m.intern(&ArrayType{Elem: el, Count: count}).(*ArrayType)
}

// Ptr returns the pointer type ptr<space, store, access>.
func (m *TypeManager) Ptr(space AddressSpace, store Type, access AccessMode) *PointerType {
	return m.intern(&PointerType{Space: space, StoreType: store, Access: access}).(*PointerType)
}

// Sampler returns the sampler type.
func (m *TypeManager) Sampler(comparison bool) *SamplerType {
	return m.intern(&SamplerType{Comparison: comparison}).(*SamplerType)
}

// SampledTexture returns the sampled texture type texture_<dim><el>.
func (m *TypeManager) SampledTexture(dim ImageDimension, el *ScalarType) *SampledTextureType {
	return m.intern(&SampledTextureType{Dim: dim, Elem: el}).(*SampledTextureType)
}

// Struct declares a new struct type. Member indices are assigned in order.
// Struct names must be unique within the manager.
func (m *TypeManager) Struct(name string, members ...StructMember) *StructType {
	if name == "" {
		bug("struct declared without a name")
	}
	key := "struct:" + name
	if _, exists := m.typeMap[key]; exists {
		bug("struct %q declared twice", name)
	}
	s := &StructType{Name: name, Members: make([]StructMember, len(members))}
	for i, member := range members {
		member.Index = i
		s.Members[i] = member
	}
	return m.getOrCreate(key, s).(*StructType)
}

// Find returns the struct with the given name, or nil.
func (m *TypeManager) Find(name string) *StructType {
	if t, ok := m.typeMap["struct:"+name]; ok {
		return t.(*StructType)
	}
	return nil
}

// UnsignedOf returns the unsigned integer equivalent of a signed integer
// scalar or vector. Other types are returned unchanged.
func (m *TypeManager) UnsignedOf(t Type) Type {
	switch t := t.(type) {
	case *ScalarType:
		if t.Kind == ScalarSint {
			return m.Scalar(ScalarUint, t.Width)
		}
	case *VectorType:
		if t.Elem.Kind == ScalarSint {
			return m.Vec(t.Size, m.Scalar(ScalarUint, t.Elem.Width))
		}
	}
	return t
}

// Types returns all registered types in registration order.
func (m *TypeManager) Types() []Type {
	return m.types
}

// Count returns the number of unique types registered.
func (m *TypeManager) Count() int {
	return len(m.types)
}
