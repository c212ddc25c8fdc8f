package balancer

import "sort"

// NodeSet holds host:port node identities with set semantics: no
// duplicates, no order. The zero value is not usable; construct with
// NewNodeSet or FromSlice.
type NodeSet map[string]struct{}

func NewNodeSet() NodeSet {
	return make(NodeSet)
}

// FromSlice builds a NodeSet from a slice, dropping duplicates.
func FromSlice(nodes []string) NodeSet {
	set := make(NodeSet, len(nodes))
	for _, n := range nodes {
		set[n] = struct{}{}
	}
	return set
}

func (s NodeSet) Add(node string) {
	s[node] = struct{}{}
}

func (s NodeSet) Has(node string) bool {
	_, ok := s[node]
	return ok
}

// Union returns a new set containing members of either set.
func (s NodeSet) Union(other NodeSet) NodeSet {
	out := make(NodeSet, len(s)+len(other))
	for n := range s {
		out[n] = struct{}{}
	}
	for n := range other {
		out[n] = struct{}{}
	}
	return out
}

// Diff returns a new set with other's members removed.
func (s NodeSet) Diff(other NodeSet) NodeSet {
	out := make(NodeSet, len(s))
	for n := range s {
		if !other.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// Intersect returns a new set with only the members present in both.
func (s NodeSet) Intersect(other NodeSet) NodeSet {
	out := make(NodeSet)
	for n := range s {
		if other.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

func (s NodeSet) Equal(other NodeSet) bool {
	if len(s) != len(other) {
		return false
	}
	for n := range s {
		if !other.Has(n) {
			return false
		}
	}
	return true
}

// Sorted returns the members as a sorted slice. It never returns nil.
func (s NodeSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
