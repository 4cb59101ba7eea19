package blocks

import (
	"fmt"
)

// sequentialIDs returns a generator producing prefix1, prefix2, ...
func sequentialIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func leaf(id string, t BlockType) *Block {
	return &Block{
		ID:         id,
		Type:       t,
		Data:       BlockData{Value: map[string]interface{}{}},
		Attributes: map[string]string{},
		Children:   []*Block{},
	}
}

func container(id string, t BlockType, children ...*Block) *Block {
	b := leaf(id, t)
	b.Children = append(b.Children, children...)
	return b
}

func childIDs(b *Block) []string {
	ids := make([]string, len(b.Children))
	for i, child := range b.Children {
		ids[i] = IDOf(child, i)
	}
	return ids
}

// sampleTree builds:
//
//	page
//	├── s1 (section)
//	│   ├── t1 (text)
//	│   └── c1 (column)
//	│       └── b1 (button)
//	└── s2 (section)
func sampleTree() *Block {
	return container("", TypePage,
		container("s1", TypeSection,
			leaf("t1", TypeText),
			container("c1", TypeColumn, leaf("b1", TypeButton)),
		),
		container("s2", TypeSection),
	)
}
