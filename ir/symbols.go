package ir

import "strconv"

// SymbolTable associates names with values. Several values may share a
// name; the disassembler disambiguates them.
type SymbolTable struct {
	names map[Value]string
	taken map[string]struct{}
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		names: make(map[Value]string),
		taken: make(map[string]struct{}),
	}
}

// Get returns the name of v, or "".
func (s *SymbolTable) Get(v Value) string { return s.names[v] }

// Set names v. An empty name removes the association.
func (s *SymbolTable) Set(v Value, name string) {
	if name == "" {
		delete(s.names, v)
		return
	}
	s.names[v] = name
	s.taken[name] = struct{}{}
}

// Register reserves name so that New never returns it.
func (s *SymbolTable) Register(name string) {
	s.taken[name] = struct{}{}
}

// New returns a fresh name based on prefix and reserves it. The prefix
// itself is returned if it is free, then prefix_1, prefix_2 and so on.
func (s *SymbolTable) New(prefix string) string {
	name := prefix
	for i := 1; ; i++ {
		if _, ok := s.taken[name]; !ok {
			break
		}
		name = prefix + "_" + strconv.Itoa(i)
	}
	s.taken[name] = struct{}{}
	return name
}
