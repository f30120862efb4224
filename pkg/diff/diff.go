// Package diff compares two versions of a flow and tags the nodes that
// changed between them.
//
// [Compare] walks both name indexes and writes a [flow.DiffStatus] onto the
// affected nodes in place: nodes only in the old flow become DELETED, nodes
// only in the new flow become ADDED, and nodes present in both whose
// attribute trees differ become MODIFIED on both sides. Nodes that did not
// change keep an unset status.
//
// Compare mutates the two graphs it is given and nothing else. Callers must
// not share a graph between concurrent comparisons.
package diff

import "github.com/matzehuels/flowlens/pkg/flow"

// Summary lists the names of affected nodes in sorted order.
type Summary struct {
	Added    []string `json:"added,omitempty" bson:"added,omitempty"`
	Deleted  []string `json:"deleted,omitempty" bson:"deleted,omitempty"`
	Modified []string `json:"modified,omitempty" bson:"modified,omitempty"`
}

// Empty reports whether no node changed.
func (s Summary) Empty() bool {
	return len(s.Added) == 0 && len(s.Deleted) == 0 && len(s.Modified) == 0
}

// Compare tags the nodes of old and new with their diff status and returns a
// summary of the changes.
func Compare(old, new *flow.Flow) Summary {
	var s Summary
	for _, name := range old.Names() {
		o := old.Index[name]
		n, ok := new.Index[name]
		switch {
		case !ok:
			o.DiffStatus = flow.DiffDeleted
			s.Deleted = append(s.Deleted, name)
		case !Equal(o, n):
			o.DiffStatus = flow.DiffModified
			n.DiffStatus = flow.DiffModified
			s.Modified = append(s.Modified, name)
		}
	}
	for _, name := range new.Names() {
		if _, ok := old.Index[name]; !ok {
			new.Index[name].DiffStatus = flow.DiffAdded
			s.Added = append(s.Added, name)
		}
	}
	return s
}
