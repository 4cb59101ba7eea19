package blocks

import (
	"fmt"
	"sort"
)

// Template is a starter document offered when creating an email
type Template struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Email       *Email `json:"email"`
}

var builtinTemplates = map[string]Template{
	"welcome": {
		Name:        "welcome",
		Description: "Welcome email with a headline, an introduction and a call to action",
		Email: &Email{
			Subject: "Welcome!",
			Content: &Block{
				Type:       TypePage,
				Data:       BlockData{Value: map[string]interface{}{}},
				Attributes: DefaultPageAttributes(),
				Children: []*Block{
					{
						Type:       TypeSection,
						Data:       BlockData{Value: map[string]interface{}{}},
						Attributes: map[string]string{"background-color": "#ffffff", "padding": "40px 20px"},
						Children: []*Block{
							{
								Type: TypeText,
								Data: BlockData{Value: map[string]interface{}{"content": "<h1>Welcome aboard!</h1>"}},
								Attributes: map[string]string{
									"font-size":   "28px",
									"line-height": "36px",
									"color":       "#1a1a1a",
									"align":       "center",
								},
								Children: []*Block{},
							},
							{
								Type: TypeText,
								Data: BlockData{Value: map[string]interface{}{"content": "We're excited to have you with us. Here's everything you need to get started."}},
								Attributes: map[string]string{
									"font-size":   "16px",
									"line-height": "24px",
									"color":       "#555555",
									"align":       "center",
								},
								Children: []*Block{},
							},
							{
								Type: TypeButton,
								Data: BlockData{Value: map[string]interface{}{
									"content": "Get Started",
									"href":    "https://example.com/get-started",
								}},
								Attributes: map[string]string{
									"background-color": "#414141",
									"color":            "#ffffff",
									"border-radius":    "3px",
									"padding":          "10px 25px",
								},
								Children: []*Block{},
							},
						},
					},
				},
			},
		},
	},
	"blank": {
		Name:        "blank",
		Description: "Empty page",
		Email:       NewEmail(),
	},
}

// Templates returns copies of the built-in templates sorted by name
func Templates() []Template {
	names := make([]string, 0, len(builtinTemplates))
	for name := range builtinTemplates {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Template, 0, len(names))
	for _, name := range names {
		t := builtinTemplates[name]
		out = append(out, Template{Name: t.Name, Description: t.Description, Email: t.Email.Clone()})
	}
	return out
}

// LoadTemplate returns a copy of the named template where every block has a fresh id
func LoadTemplate(name string, gen IDGenerator) (*Email, error) {
	t, ok := builtinTemplates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	if gen == nil {
		gen = NewBlockID
	}

	email := t.Email.Clone()
	reassignIDs(email.Content, gen)
	return email, nil
}
