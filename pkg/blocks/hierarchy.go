package blocks

import (
	"fmt"
)

var contentTypes = []BlockType{TypeText, TypeImage, TypeButton, TypeDivider, TypeSpacer}

// ValidChildren lists the child types each container type accepts
var ValidChildren = map[BlockType][]BlockType{
	TypePage:    append([]BlockType{TypeSection, TypeColumn}, contentTypes...),
	TypeSection: append([]BlockType{TypeColumn}, contentTypes...),
	TypeColumn:  contentTypes,
}

// IsContainer reports whether blocks of this type can hold children
func IsContainer(blockType BlockType) bool {
	_, ok := ValidChildren[blockType]
	return ok
}

// CanDrop reports whether a block of type child may be placed inside a block of type parent
func CanDrop(child, parent BlockType) bool {
	for _, allowed := range ValidChildren[parent] {
		if allowed == child {
			return true
		}
	}
	return false
}

// ValidateHierarchy checks every parent/child pair of the tree rooted at root
// and that no explicit id is used twice
func ValidateHierarchy(root *Block) error {
	if root == nil {
		return fmt.Errorf("%w: missing root", ErrInvalidHierarchy)
	}
	if root.Type != TypePage {
		return fmt.Errorf("%w: root must be of type %q, got %q", ErrInvalidHierarchy, TypePage, root.Type)
	}

	var err error
	parents := map[string]BlockType{"": root.Type}
	Walk(root, func(v Visit) bool {
		parentType := parents[v.ParentID]
		if !CanDrop(v.Block.Type, parentType) {
			err = fmt.Errorf("%w: %q cannot contain %q (block %s)", ErrInvalidHierarchy, parentType, v.Block.Type, v.ID)
			return false
		}
		parents[v.ID] = v.Block.Type
		return true
	})
	if err != nil {
		return err
	}
	return ValidateIDs(root)
}

// DisplayName returns the human readable name of a block type
func DisplayName(blockType BlockType) string {
	switch blockType {
	case TypePage:
		return "Page"
	case TypeSection:
		return "Section"
	case TypeColumn:
		return "Columns"
	case TypeText:
		return "Text"
	case TypeImage:
		return "Image"
	case TypeButton:
		return "Button"
	case TypeDivider:
		return "Divider"
	case TypeSpacer:
		return "Spacer"
	default:
		return string(blockType)
	}
}
