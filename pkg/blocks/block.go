package blocks

import (
	"encoding/json"
)

// BlockType represents the tag of a block in the email tree
type BlockType string

const (
	TypePage    BlockType = "page"
	TypeSection BlockType = "section"
	TypeColumn  BlockType = "column"
	TypeText    BlockType = "text"
	TypeImage   BlockType = "image"
	TypeButton  BlockType = "button"
	TypeDivider BlockType = "divider"
	TypeSpacer  BlockType = "spacer"
)

// BlockData holds the content payload of a block (text content, image src, link href...)
type BlockData struct {
	Value map[string]interface{} `json:"value"`
}

// Block is a node of the email document tree
type Block struct {
	ID         string            `json:"id,omitempty"`
	Type       BlockType         `json:"type"`
	Data       BlockData         `json:"data"`
	Attributes map[string]string `json:"attributes"`
	Children   []*Block          `json:"children"`
}

// MarshalJSON normalizes nil collections so persisted documents always carry
// an object for attributes/data.value and an array for children
func (b *Block) MarshalJSON() ([]byte, error) {
	type alias Block
	out := alias(*b)
	if out.Data.Value == nil {
		out.Data.Value = map[string]interface{}{}
	}
	if out.Attributes == nil {
		out.Attributes = map[string]string{}
	}
	if out.Children == nil {
		out.Children = []*Block{}
	}
	return json.Marshal(out)
}

// GetValue returns a content value as a string, or the empty string
func (b *Block) GetValue(key string) string {
	if b == nil || b.Data.Value == nil {
		return ""
	}
	if s, ok := b.Data.Value[key].(string); ok {
		return s
	}
	return ""
}

// Clone returns a deep copy of the block and its whole subtree
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}

	clone := &Block{
		ID:   b.ID,
		Type: b.Type,
	}
	if b.Data.Value != nil {
		clone.Data.Value = cloneMap(b.Data.Value)
	}
	if b.Attributes != nil {
		clone.Attributes = make(map[string]string, len(b.Attributes))
		for k, v := range b.Attributes {
			clone.Attributes[k] = v
		}
	}
	if b.Children != nil {
		clone.Children = make([]*Block, len(b.Children))
		for i, child := range b.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return cloneMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, s := range val {
			out[k] = s
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}

// Email is the persisted document: a subject line plus the page tree
type Email struct {
	Subject string `json:"subject"`
	Content *Block `json:"content"`
}

// Clone returns a deep copy of the email
func (e *Email) Clone() *Email {
	if e == nil {
		return nil
	}
	return &Email{
		Subject: e.Subject,
		Content: e.Content.Clone(),
	}
}

// DefaultPageAttributes are the body attributes of a fresh canvas
func DefaultPageAttributes() map[string]string {
	return map[string]string{
		"background-color": "#ffffff",
		"width":            "595px",
		"height":           "842px",
		"font-family":      "Arial, sans-serif",
		"font-size":        "14px",
		"color":            "#000000",
	}
}

// NewPage returns an empty page root
func NewPage() *Block {
	return &Block{
		Type:       TypePage,
		Data:       BlockData{Value: map[string]interface{}{}},
		Attributes: DefaultPageAttributes(),
		Children:   []*Block{},
	}
}

// NewEmail returns an email with an empty subject and an empty page
func NewEmail() *Email {
	return &Email{Content: NewPage()}
}
