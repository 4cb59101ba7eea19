package blocks

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces a fresh block id
type IDGenerator func() string

// IDOf returns the explicit id of a block, or its positional id "<type>-<index>"
// when none was stored. Positional ids are never written back into the tree.
func IDOf(block *Block, indexInParent int) string {
	if block == nil {
		return ""
	}
	if block.ID != "" {
		return block.ID
	}
	return string(block.Type) + "-" + strconv.Itoa(indexInParent)
}

// NewBlockID returns an id of the form block_<9 random base36 chars>_<millis in base36>
func NewBlockID() string {
	return newBlockIDAt(time.Now())
}

func newBlockIDAt(now time.Time) string {
	u := uuid.New()
	random := strconv.FormatUint(binary.BigEndian.Uint64(u[:8]), 36)
	if len(random) < 9 {
		random = strings.Repeat("0", 9-len(random)) + random
	}
	return "block_" + random[:9] + "_" + strconv.FormatInt(now.UnixMilli(), 36)
}

// AssignIDs stores an explicit id on every block of the tree that lacks one,
// root included. A block repeating an id already seen earlier in depth-first
// order gets a fresh id as well, so the first occurrence keeps its id. It
// returns the number of blocks that were assigned an id.
func AssignIDs(root *Block, gen IDGenerator) int {
	if root == nil {
		return 0
	}
	if gen == nil {
		gen = NewBlockID
	}
	return assignIDs(root, gen, make(map[string]struct{}))
}

func assignIDs(block *Block, gen IDGenerator, seen map[string]struct{}) int {
	assigned := 0
	if _, dup := seen[block.ID]; block.ID == "" || dup {
		for {
			block.ID = gen()
			if _, taken := seen[block.ID]; !taken {
				break
			}
		}
		assigned++
	}
	seen[block.ID] = struct{}{}
	for _, child := range block.Children {
		if child != nil {
			assigned += assignIDs(child, gen, seen)
		}
	}
	return assigned
}

// idsOf returns the explicit ids used in the tree rooted at root
func idsOf(root *Block) map[string]struct{} {
	ids := make(map[string]struct{})
	if root == nil {
		return ids
	}
	if root.ID != "" {
		ids[root.ID] = struct{}{}
	}
	Walk(root, func(v Visit) bool {
		if v.Block.ID != "" {
			ids[v.Block.ID] = struct{}{}
		}
		return true
	})
	return ids
}

// ValidateIDs reports the first explicit id that appears on more than one
// block of the tree. Blocks without an id are ignored.
func ValidateIDs(root *Block) error {
	if root == nil {
		return nil
	}
	seen := make(map[string]struct{})
	if root.ID != "" {
		seen[root.ID] = struct{}{}
	}
	var err error
	Walk(root, func(v Visit) bool {
		id := v.Block.ID
		if id == "" {
			return true
		}
		if _, dup := seen[id]; dup {
			err = fmt.Errorf("%w: %q", ErrDuplicateID, id)
			return false
		}
		seen[id] = struct{}{}
		return true
	})
	return err
}

// reassignIDs replaces every id in the subtree with a fresh one
func reassignIDs(root *Block, gen IDGenerator) {
	if root == nil {
		return
	}
	root.ID = gen()
	for _, child := range root.Children {
		reassignIDs(child, gen)
	}
}
