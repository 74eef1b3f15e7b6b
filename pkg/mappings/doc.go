// Package mappings provides key/value containers that trade off laziness,
// mutability, memory footprint and ordering, all implementing
// types.Mapping so that callers can substitute one for another.
//
// Each variant supplies only the four primitives (Get, Set, Delete, Keys)
// and its mutability. The derived operations live here once, as generic
// functions:
//
//	m := mappings.NewOrdered[string, int]()
//	_ = m.Set("a", 1)
//	v, err := mappings.PopOr[string, int](m, "b", 0)
//	n, err := mappings.Len[string, int](m)
//
// Variants may implement the capability interfaces in package types
// (Container, Sizer, Clearer, ItemIterator) to speed up the derived
// operations; the results are the same either way.
//
// None of the mappings are safe for concurrent use. The lazy variants
// populate their caches during Get, so a Get is a write. The one exception is
// the slotted schema registry, which is shared by the whole process.
package mappings
