package ir

import "strings"

// Capabilities is a set of relaxations of the validation rules. A pass
// declares the capabilities it accepts in its input.
type Capabilities uint8

const (
	// AllowPointersAndHandlesInStructures allows struct members of
	// pointer, texture and sampler types.
	AllowPointersAndHandlesInStructures Capabilities = 1 << iota
	// AllowPrivateVarsInFunctions allows private address space variables
	// to be declared inside functions.
	AllowPrivateVarsInFunctions
	// AllowOverrides allows override declarations in the root block.
	AllowOverrides
	// AllowUnusedValues allows Unused as a construct operand.
	AllowUnusedValues
)

// AllCapabilities has every capability set.
const AllCapabilities = AllowPointersAndHandlesInStructures | AllowPrivateVarsInFunctions |
	AllowOverrides | AllowUnusedValues

// Has reports whether every capability of c is in caps.
func (caps Capabilities) Has(c Capabilities) bool { return caps&c == c }

func (caps Capabilities) String() string {
	if caps == 0 {
		return "none"
	}
	var names []string
	for _, c := range [...]struct {
		c    Capabilities
		name string
	}{
		{AllowPointersAndHandlesInStructures, "pointers_and_handles_in_structures"},
		{AllowPrivateVarsInFunctions, "private_vars_in_functions"},
		{AllowOverrides, "overrides"},
		{AllowUnusedValues, "unused_values"},
	} {
		if caps.Has(c.c) {
			names = append(names, c.name)
		}
	}
	return strings.Join(names, ",")
}
