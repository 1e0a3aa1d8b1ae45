package reseller

// Parentage expresses a reseller's position in the hierarchy as a closed
// sum: either the root administrator, or a sub-reseller of a known parent.
// Only the root administrator may have no parent, so "root" is an explicit
// variant rather than a nullable reference.
type Parentage struct {
	parentID uint
	isRoot   bool
}

// Root returns the parentage of the root administrator.
func Root() Parentage {
	return Parentage{isRoot: true}
}

// SubOf returns the parentage of a sub-reseller under the given parent.
func SubOf(parentID uint) Parentage {
	return Parentage{parentID: parentID}
}

// IsRoot reports whether this is the root administrator.
func (p Parentage) IsRoot() bool {
	return p.isRoot
}

// ParentID returns the parent reseller ID and whether one exists.
func (p Parentage) ParentID() (uint, bool) {
	if p.isRoot {
		return 0, false
	}
	return p.parentID, true
}
