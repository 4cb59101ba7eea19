package blocks

import (
	"sync"
)

// Definition is the template a block type is created from
type Definition struct {
	Name              string
	DefaultData       map[string]interface{}
	DefaultAttributes map[string]string
}

// Overrides are merged over a definition when a block is created
type Overrides struct {
	Data       map[string]interface{}
	Attributes map[string]string
	Children   []*Block
}

// Registry maps block types to their definitions and creates new blocks
type Registry struct {
	mu    sync.RWMutex
	defs  map[BlockType]Definition
	order []BlockType
	newID IDGenerator
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithIDGenerator overrides the id generator used for new blocks
func WithIDGenerator(gen IDGenerator) RegistryOption {
	return func(r *Registry) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		defs:  make(map[BlockType]Definition),
		newID: NewBlockID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register stores the definition of a block type, replacing any previous one
func (r *Registry) Register(blockType BlockType, def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[blockType]; !exists {
		r.order = append(r.order, blockType)
	}
	r.defs[blockType] = def
}

// Definition returns the definition registered for a type
func (r *Registry) Definition(blockType BlockType) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[blockType]
	return def, ok
}

// Types returns the registered types in registration order
func (r *Registry) Types() []BlockType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]BlockType(nil), r.order...)
}

// NewID returns a fresh id from the registry's generator
func (r *Registry) NewID() string {
	return r.newID()
}

// Create builds a new block of the given type with a fresh id. Default data is
// deep-merged with the override data, default attributes are merged with the
// override attributes and the override children are deep-copied with fresh ids.
func (r *Registry) Create(blockType BlockType, overrides Overrides) (*Block, error) {
	def, ok := r.Definition(blockType)
	if !ok {
		return nil, &UnknownBlockTypeError{Type: blockType}
	}

	block := &Block{
		ID:         r.newID(),
		Type:       blockType,
		Data:       BlockData{Value: deepMerge(def.DefaultData, overrides.Data)},
		Attributes: mergeAttributes(def.DefaultAttributes, overrides.Attributes),
		Children:   make([]*Block, 0, len(overrides.Children)),
	}
	for _, child := range overrides.Children {
		copied := child.Clone()
		reassignIDs(copied, r.newID)
		block.Children = append(block.Children, copied)
	}
	return block, nil
}

func mergeAttributes(defaults, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// deepMerge returns a new map where nested maps of src are merged recursively into dst
func deepMerge(dst, src map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(dst)+len(src))
	for k, v := range dst {
		out[k] = cloneValue(v)
	}
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]interface{})
		dstMap, dstIsMap := out[k].(map[string]interface{})
		if srcIsMap && dstIsMap {
			out[k] = deepMerge(dstMap, srcMap)
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

// DefaultRegistry returns a registry holding the built-in block types
func DefaultRegistry(opts ...RegistryOption) *Registry {
	r := NewRegistry(opts...)

	r.Register(TypePage, Definition{
		Name:              "Page",
		DefaultAttributes: DefaultPageAttributes(),
	})
	r.Register(TypeSection, Definition{
		Name: "Section",
		DefaultAttributes: map[string]string{
			"background-color": "#ffffff",
			"padding":          "20px 0px",
		},
	})
	r.Register(TypeColumn, Definition{
		Name: "Columns",
		DefaultAttributes: map[string]string{
			"width":        "100%",
			"column-count": "2",
			"direction":    "horizontal",
			"spacing":      "16px",
		},
	})
	r.Register(TypeText, Definition{
		Name:        "Text",
		DefaultData: map[string]interface{}{"content": "This is sample text"},
		DefaultAttributes: map[string]string{
			"font-size":   "13px",
			"line-height": "22px",
			"color":       "#000000",
		},
	})
	r.Register(TypeImage, Definition{
		Name:        "Image",
		DefaultData: map[string]interface{}{"src": "https://placehold.co/600x200"},
		DefaultAttributes: map[string]string{
			"width": "100%",
		},
	})
	r.Register(TypeButton, Definition{
		Name:        "Button",
		DefaultData: map[string]interface{}{"content": "Button"},
		DefaultAttributes: map[string]string{
			"background-color": "#414141",
			"color":            "#ffffff",
			"border-radius":    "3px",
			"padding":          "10px 25px",
		},
	})
	r.Register(TypeDivider, Definition{
		Name: "Divider",
		DefaultAttributes: map[string]string{
			"border-color": "#cccccc",
			"padding":      "10px 0",
		},
	})
	r.Register(TypeSpacer, Definition{
		Name: "Spacer",
		DefaultAttributes: map[string]string{
			"height": "20px",
		},
	})

	return r
}
