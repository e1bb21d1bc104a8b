package scope

import "github.com/ifabos/typescope/qname"

// typeSet maps simple names to the distinct types reachable under them.
// Iteration follows insertion order.
type typeSet struct {
	bySimple map[string][]qname.Name
	keys     map[string]struct{}
	order    []qname.Name
}

func newTypeSet() *typeSet {
	return &typeSet{
		bySimple: make(map[string][]qname.Name),
		keys:     make(map[string]struct{}),
	}
}

func (s *typeSet) add(n qname.Name) bool {
	key := n.String()
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	s.bySimple[n.SimpleName()] = append(s.bySimple[n.SimpleName()], n)
	s.order = append(s.order, n)
	return true
}

func (s *typeSet) get(simple string) []qname.Name {
	return s.bySimple[simple]
}

// all returns a snapshot, so callers may add to s while ranging.
func (s *typeSet) all() []qname.Name {
	out := make([]qname.Name, len(s.order))
	copy(out, s.order)
	return out
}

func (s *typeSet) len() int {
	return len(s.order)
}
