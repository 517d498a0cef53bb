// Package ir defines the intermediate representation used by the shader
// transforms.
//
// The IR is a structured SSA form:
//   - Values are constants, function parameters, block parameters and
//     instruction results. Every value records the operand slots that use it.
//   - Instructions live in blocks as an intrusive doubly linked list.
//   - Control flow is expressed with If, Loop and Switch instructions that
//     own their child blocks. Blocks end in a terminator that names the
//     control instruction or block it transfers to.
//   - Loop bodies and continuing blocks are MultiInBlocks: they take block
//     parameters and track the sibling branches that enter them.
//
// # Structure
//
// A Module owns:
//   - Types: an interning TypeManager, so types compare by identity
//   - Root: the module-scope block of var and override declarations
//   - Functions: function definitions in declaration order
//   - Symbols: the names of values, functions and types
//
// Use a Builder to create instructions at an insertion point, Validate to
// check the structural invariants and Disassemble to print the module in
// its textual form.
package ir
