package blocks

// BlockUpdate holds the values shallow-merged into a block on update.
// Nil maps leave the corresponding part of the block unchanged.
type BlockUpdate struct {
	Data       map[string]interface{} `json:"data,omitempty"`
	Attributes map[string]string      `json:"attributes,omitempty"`
}

// IsEmpty reports whether the update carries no values
func (u BlockUpdate) IsEmpty() bool {
	return len(u.Data) == 0 && len(u.Attributes) == 0
}

// resolveContainer returns the block children are inserted into for parentID.
// An empty parentID, or the root's own explicit id, designates the root.
func resolveContainer(root *Block, parentID string) (*Block, bool) {
	if parentID == "" || (root.ID != "" && parentID == root.ID) {
		return root, true
	}
	return FindByID(root, parentID)
}

// Insert splices block into the children of the block identified by parentID at
// index. An index outside [0, len(children)] appends.
func Insert(root *Block, parentID string, block *Block, index int) error {
	if root == nil || block == nil {
		return treeError("insert", parentID, ErrTargetNotFound)
	}

	parent, ok := resolveContainer(root, parentID)
	if !ok {
		return treeError("insert", parentID, ErrTargetNotFound)
	}
	if Contains(block, parent) {
		return treeError("insert", parentID, ErrMoveIntoSelf)
	}

	insertAt(parent, block, index)
	return nil
}

func insertAt(parent, block *Block, index int) {
	if parent.Children == nil {
		parent.Children = []*Block{}
	}
	if index < 0 || index > len(parent.Children) {
		index = len(parent.Children)
	}

	parent.Children = append(parent.Children, nil)
	copy(parent.Children[index+1:], parent.Children[index:])
	parent.Children[index] = block
}

func removeAt(parent *Block, index int) *Block {
	removed := parent.Children[index]
	parent.Children = append(parent.Children[:index], parent.Children[index+1:]...)
	return removed
}

// Update shallow-merges update into the data value and attributes of the
// matching block. Type, id and children are left untouched.
func Update(root *Block, id string, update BlockUpdate) error {
	block, ok := FindByID(root, id)
	if !ok {
		return treeError("update", id, ErrTargetNotFound)
	}

	if len(update.Data) > 0 {
		if block.Data.Value == nil {
			block.Data.Value = make(map[string]interface{}, len(update.Data))
		}
		for k, v := range update.Data {
			block.Data.Value[k] = cloneValue(v)
		}
	}
	if len(update.Attributes) > 0 {
		if block.Attributes == nil {
			block.Attributes = make(map[string]string, len(update.Attributes))
		}
		for k, v := range update.Attributes {
			block.Attributes[k] = v
		}
	}
	return nil
}

// Delete removes exactly one block matching id and returns it
func Delete(root *Block, id string) (*Block, error) {
	loc, ok := Locate(root, id)
	if !ok {
		return nil, treeError("delete", id, ErrTargetNotFound)
	}
	return removeAt(loc.Parent, loc.Index), nil
}

// Move relocates the matching block under targetParentID. targetIndex is a
// position among the destination's children as they were before the move;
// within the same parent an index past the original position is decremented
// to account for the removal. Both ends are resolved before the tree is
// touched, so a failed move leaves the tree unchanged.
func Move(root *Block, id, targetParentID string, targetIndex int) error {
	src, ok := Locate(root, id)
	if !ok {
		return treeError("move", id, ErrTargetNotFound)
	}

	target, ok := resolveContainer(root, targetParentID)
	if !ok {
		return treeError("move", targetParentID, ErrTargetNotFound)
	}
	if Contains(src.Block, target) {
		return treeError("move", id, ErrMoveIntoSelf)
	}

	if targetIndex < 0 || targetIndex > len(target.Children) {
		targetIndex = -1
	} else if target == src.Parent && targetIndex > src.Index {
		targetIndex--
	}

	block := removeAt(src.Parent, src.Index)
	insertAt(target, block, targetIndex)
	return nil
}

// IsNoopMove reports whether moving id to targetIndex under targetParentID
// would leave the tree unchanged
func IsNoopMove(root *Block, id, targetParentID string, targetIndex int) bool {
	src, ok := Locate(root, id)
	if !ok {
		return false
	}
	target, ok := resolveContainer(root, targetParentID)
	if !ok || target != src.Parent {
		return false
	}
	if targetIndex < 0 || targetIndex > len(target.Children) {
		return src.Index == len(target.Children)-1
	}
	return targetIndex == src.Index || targetIndex == src.Index+1
}

// Duplicate inserts a deep copy of the matching block right after it. The copy
// and all of its descendants get fresh ids.
func Duplicate(root *Block, id string, gen IDGenerator) (*Block, error) {
	if gen == nil {
		gen = NewBlockID
	}

	loc, ok := Locate(root, id)
	if !ok {
		return nil, treeError("duplicate", id, ErrTargetNotFound)
	}

	clone := loc.Block.Clone()
	reassignIDs(clone, gen)
	insertAt(loc.Parent, clone, loc.Index+1)
	return clone, nil
}
