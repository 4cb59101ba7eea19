package blocks

// Location describes where a block sits in the tree
type Location struct {
	Block *Block
	// Parent is the container holding Block
	Parent *Block
	// ParentID is the derived id of Parent, empty when Parent is the searched container
	ParentID string
	Index    int
}

// Visit is passed to Walk for every block of a tree
type Visit struct {
	Block    *Block
	ID       string
	ParentID string
	Index    int
	Depth    int
}

// Walk visits every descendant of container depth-first in children order.
// Returning false from fn stops the walk.
func Walk(container *Block, fn func(Visit) bool) {
	if container == nil {
		return
	}
	walk(container, "", 0, fn)
}

func walk(parent *Block, parentID string, depth int, fn func(Visit) bool) bool {
	for i, child := range parent.Children {
		if child == nil {
			continue
		}
		id := IDOf(child, i)
		if !fn(Visit{Block: child, ID: id, ParentID: parentID, Index: i, Depth: depth}) {
			return false
		}
		if !walk(child, id, depth+1, fn) {
			return false
		}
	}
	return true
}

// Locate finds the first block whose derived id matches id
func Locate(container *Block, id string) (Location, bool) {
	var loc Location
	found := false

	Walk(container, func(v Visit) bool {
		if v.ID != id {
			return true
		}
		loc = Location{
			Block:    v.Block,
			ParentID: v.ParentID,
			Index:    v.Index,
		}
		found = true
		return false
	})
	if found {
		// derived ids are only unique within a parent, so resolve the parent by identity
		loc.Parent = parentOf(container, loc.Block)
	}

	return loc, found
}

// parentOf returns the container directly holding target, by identity
func parentOf(container, target *Block) *Block {
	for _, child := range container.Children {
		if child == target {
			return container
		}
		if child == nil {
			continue
		}
		if p := parentOf(child, target); p != nil {
			return p
		}
	}
	return nil
}

// FindByID returns the first block at any depth whose derived id matches id
func FindByID(container *Block, id string) (*Block, bool) {
	loc, ok := Locate(container, id)
	if !ok {
		return nil, false
	}
	return loc.Block, true
}

// FindParentID returns the derived id of the direct parent of the matching block.
// The second result is false when the block is a root-level child or was not found.
func FindParentID(container *Block, id string) (string, bool) {
	loc, ok := Locate(container, id)
	if !ok || loc.ParentID == "" {
		return "", false
	}
	return loc.ParentID, true
}

// FindIndex returns the position of the matching block in its parent's children, or -1
func FindIndex(container *Block, id string) int {
	loc, ok := Locate(container, id)
	if !ok {
		return -1
	}
	return loc.Index
}

// Contains reports whether target is ancestor itself or one of its descendants
func Contains(ancestor, target *Block) bool {
	if ancestor == nil || target == nil {
		return false
	}
	if ancestor == target {
		return true
	}
	for _, child := range ancestor.Children {
		if Contains(child, target) {
			return true
		}
	}
	return false
}
