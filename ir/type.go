package ir

import (
	"strconv"
)

// Type represents a type in the IR.
//
// Types are interned by a TypeManager, so two types are structurally
// identical if and only if they are the same pointer.
type Type interface {
	// String returns the textual form used by the disassembler.
	String() string

	typ()
}

// VoidType is the type of a function that returns nothing.
type VoidType struct{}

func (*VoidType) typ() {}

// String implements Type.
func (*VoidType) String() string { return "void" }

// ScalarKind represents scalar type kinds.
type ScalarKind uint8

const (
	ScalarSint  ScalarKind = iota // Signed integer
	ScalarUint                    // Unsigned integer
	ScalarFloat                   // Floating point
	ScalarBool                    // Boolean
)

// ScalarType represents scalar types.
type ScalarType struct {
	Kind  ScalarKind
	Width uint8 // in bytes
}

func (*ScalarType) typ() {}

// String implements Type.
func (t *ScalarType) String() string {
	switch t.Kind {
	case ScalarSint:
		return "i" + strconv.Itoa(int(t.Width)*8)
	case ScalarUint:
		return "u" + strconv.Itoa(int(t.Width)*8)
	case ScalarFloat:
		return "f" + strconv.Itoa(int(t.Width)*8)
	default:
		return "bool"
	}
}

// VectorType represents vector types.
type VectorType struct {
	Size VectorSize
	Elem *ScalarType
}

func (*VectorType) typ() {}

// String implements Type.
func (t *VectorType) String() string {
	return "vec" + strconv.Itoa(int(t.Size)) + "<" + t.Elem.String() + ">"
}

// VectorSize represents vector sizes.
type VectorSize uint8

const (
	Vec2 VectorSize = 2
	Vec3 VectorSize = 3
	Vec4 VectorSize = 4
)

// MatrixType represents matrix types.
type MatrixType struct {
	Columns VectorSize
	Rows    VectorSize
	Elem    *ScalarType
}

func (*MatrixType) typ() {}

// String implements Type.
func (t *MatrixType) String() string {
	return "mat" + strconv.Itoa(int(t.Columns)) + "x" + strconv.Itoa(int(t.Rows)) + "<" + t.Elem.String() + ">"
}

// ArrayType represents array types. A zero Count is a runtime-sized array.
type ArrayType struct {
	Elem  Type
	Count uint32
}

func (*ArrayType) typ() {}

// String implements Type.
func (t *ArrayType) String() string {
	if t.Count == 0 {
		return "array<" + t.Elem.String() + ">"
	}
	return "array<" + t.Elem.String() + ", " + strconv.FormatUint(uint64(t.Count), 10) + ">"
}

// StructType represents struct types. Structs are nominal: two structs
// with the same members but different names are different types.
type StructType struct {
	Name    string
	Members []StructMember
}

func (*StructType) typ() {}

// String implements Type.
func (t *StructType) String() string { return t.Name }

// StructMember represents a struct member.
type StructMember struct {
	Name  string
	Type  Type
	Index int
}

// PointerType represents pointer types.
type PointerType struct {
	Space     AddressSpace
	StoreType Type
	Access    AccessMode
}

func (*PointerType) typ() {}

// String implements Type.
func (t *PointerType) String() string {
	return "ptr<" + t.Space.String() + ", " + t.StoreType.String() + ", " + t.Access.String() + ">"
}

// SamplerType represents sampler types.
type SamplerType struct {
	Comparison bool
}

func (*SamplerType) typ() {}

// String implements Type.
func (t *SamplerType) String() string {
	if t.Comparison {
		return "sampler_comparison"
	}
	return "sampler"
}

// SampledTextureType represents sampled texture types.
type SampledTextureType struct {
	Dim  ImageDimension
	Elem *ScalarType
}

func (*SampledTextureType) typ() {}

// String implements Type.
func (t *SampledTextureType) String() string {
	return "texture_" + t.Dim.String() + "<" + t.Elem.String() + ">"
}

// ImageDimension represents image dimensions.
type ImageDimension uint8

const (
	Dim1D ImageDimension = iota
	Dim2D
	Dim3D
	DimCube
)

func (d ImageDimension) String() string {
	switch d {
	case Dim1D:
		return "1d"
	case Dim2D:
		return "2d"
	case Dim3D:
		return "3d"
	default:
		return "cube"
	}
}

// AddressSpace represents memory address spaces.
type AddressSpace uint8

const (
	SpaceFunction AddressSpace = iota
	SpacePrivate
	SpaceWorkGroup
	SpaceUniform
	SpaceStorage
	SpaceHandle
)

var addressSpaceNames = [...]string{
	SpaceFunction:  "function",
	SpacePrivate:   "private",
	SpaceWorkGroup: "workgroup",
	SpaceUniform:   "uniform",
	SpaceStorage:   "storage",
	SpaceHandle:    "handle",
}

func (s AddressSpace) String() string {
	if int(s) < len(addressSpaceNames) {
		return addressSpaceNames[s]
	}
	return "unknown"
}

// AccessMode represents the access mode of a pointer.
type AccessMode uint8

const (
	AccessReadWrite AccessMode = iota
	AccessRead
	AccessWrite
)

func (a AccessMode) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return "read_write"
	}
}

// ShaderStage represents a shader stage of an entry point function.
type ShaderStage uint8

const (
	StageNone ShaderStage = iota
	StageVertex
	StageFragment
	StageCompute
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return ""
	}
}

// IsHandle reports whether t is an opaque handle type (texture or sampler).
func IsHandle(t Type) bool {
	switch t.(type) {
	case *SamplerType, *SampledTextureType:
		return true
	}
	return false
}

// ElementOf returns the scalar element of a scalar, vector or matrix type,
// or nil for any other type.
func ElementOf(t Type) *ScalarType {
	switch t := t.(type) {
	case *ScalarType:
		return t
	case *VectorType:
		return t.Elem
	case *MatrixType:
		return t.Elem
	}
	return nil
}

// IsSignedInteger reports whether t is a signed integer scalar or vector.
func IsSignedInteger(t Type) bool {
	if _, ok := t.(*MatrixType); ok {
		return false
	}
	el := ElementOf(t)
	return el != nil && el.Kind == ScalarSint
}

// IsInteger reports whether t is an integer scalar or vector.
func IsInteger(t Type) bool {
	if _, ok := t.(*MatrixType); ok {
		return false
	}
	el := ElementOf(t)
	return el != nil && (el.Kind == ScalarSint || el.Kind == ScalarUint)
}

// IsBool reports whether t is a boolean scalar or vector.
func IsBool(t Type) bool {
	el := ElementOf(t)
	return el != nil && el.Kind == ScalarBool
}

// StoreTypeOf returns the store type of a pointer type, or nil.
func StoreTypeOf(t Type) Type {
	if p, ok := t.(*PointerType); ok {
		return p.StoreType
	}
	return nil
}
