package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Notifuse/emailbuilder/pkg/blocks"
	"github.com/osteele/liquid"
)

// Options controls how an email is exported
type Options struct {
	// TemplateData enables Liquid rendering of text, button and link content
	TemplateData map[string]interface{}
	// IncludeXMLTag prepends an XML declaration to MJML output
	IncludeXMLTag bool
	// UTM parameters appended to http(s) links of compiled HTML
	UTM UTMParams
}

// editorOnlyAttributes are layout hints of the canvas that have no MJML equivalent
var editorOnlyAttributes = map[string]bool{
	"column-count": true,
	"direction":    true,
	"spacing":      true,
}

type mjmlWriter struct {
	sb     strings.Builder
	engine *liquid.Engine
	data   map[string]interface{}
}

// ToMJML converts an email to an MJML document. Content blocks placed
// directly in the page or in a section are wrapped in the mj-section and
// mj-column elements MJML requires.
func ToMJML(email *blocks.Email, opts Options) (string, error) {
	if email == nil || email.Content == nil {
		return "", fmt.Errorf("email content cannot be nil")
	}
	if email.Content.Type != blocks.TypePage {
		return "", fmt.Errorf("root block must be of type '%s', got '%s'", blocks.TypePage, email.Content.Type)
	}

	w := &mjmlWriter{data: opts.TemplateData}
	if opts.TemplateData != nil {
		w.engine = liquid.NewEngine()
	}

	if opts.IncludeXMLTag {
		w.line(0, `<?xml version="1.0" encoding="UTF-8"?>`)
	}
	w.line(0, "<mjml>")
	w.line(1, "<mj-head>")
	if email.Subject != "" {
		subject, err := w.render(email.Subject, "subject")
		if err != nil {
			return "", err
		}
		w.line(2, "<mj-title>"+escapeContent(subject)+"</mj-title>")
	}
	w.line(2, "<mj-attributes>")
	w.line(3, `<mj-all font-family="`+escapeAttributeValue(fontFamily(email.Content), "font-family")+`" />`)
	w.line(2, "</mj-attributes>")
	w.line(1, "</mj-head>")

	w.line(1, "<mj-body"+formatAttributes(bodyAttributes(email.Content))+">")
	if err := w.body(email.Content.Children, 2); err != nil {
		return "", err
	}
	w.line(1, "</mj-body>")
	w.sb.WriteString("</mjml>")

	return w.sb.String(), nil
}

func fontFamily(page *blocks.Block) string {
	if f := page.Attributes["font-family"]; f != "" {
		return f
	}
	return "Arial, sans-serif"
}

func bodyAttributes(page *blocks.Block) map[string]string {
	attrs := map[string]string{}
	for k, v := range page.Attributes {
		switch k {
		case "width", "background-color", "css-class":
			attrs[k] = v
		}
	}
	return attrs
}

func (w *mjmlWriter) line(indent int, s string) {
	w.sb.WriteString(strings.Repeat("  ", indent))
	w.sb.WriteString(s)
	w.sb.WriteString("\n")
}

// render processes Liquid markup when template data was supplied
func (w *mjmlWriter) render(content, blockID string) (string, error) {
	if w.engine == nil {
		return content, nil
	}
	if !strings.Contains(content, "{{") && !strings.Contains(content, "{%") {
		return content, nil
	}

	rendered, err := w.engine.ParseAndRenderString(content, w.data)
	if err != nil {
		return "", fmt.Errorf("liquid rendering error in block (ID: %s): %w", blockID, err)
	}
	return rendered, nil
}

// body writes the children of the page
func (w *mjmlWriter) body(children []*blocks.Block, indent int) error {
	var pending []*blocks.Block
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		w.line(indent, "<mj-section>")
		w.line(indent+1, "<mj-column>")
		if err := w.contents(pending, indent+2); err != nil {
			return err
		}
		w.line(indent+1, "</mj-column>")
		w.line(indent, "</mj-section>")
		pending = nil
		return nil
	}

	for i, child := range children {
		if child == nil {
			continue
		}
		switch child.Type {
		case blocks.TypeSection:
			if err := flush(); err != nil {
				return err
			}
			if err := w.section(child, indent); err != nil {
				return err
			}
		case blocks.TypeColumn:
			if err := flush(); err != nil {
				return err
			}
			w.line(indent, "<mj-section>")
			if err := w.columns(child, indent+1); err != nil {
				return err
			}
			w.line(indent, "</mj-section>")
		default:
			if blocks.IsContainer(child.Type) || !isKnownContent(child.Type) {
				if err := flush(); err != nil {
					return err
				}
				w.line(indent, unknownBlockComment(child, i))
				continue
			}
			pending = append(pending, child)
		}
	}
	return flush()
}

func (w *mjmlWriter) section(section *blocks.Block, indent int) error {
	w.line(indent, "<mj-section"+formatAttributes(section.Attributes)+">")

	var pending []*blocks.Block
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		w.line(indent+1, "<mj-column>")
		if err := w.contents(pending, indent+2); err != nil {
			return err
		}
		w.line(indent+1, "</mj-column>")
		pending = nil
		return nil
	}

	for i, child := range section.Children {
		if child == nil {
			continue
		}
		switch {
		case child.Type == blocks.TypeColumn:
			if err := flush(); err != nil {
				return err
			}
			if err := w.columns(child, indent+1); err != nil {
				return err
			}
		case isKnownContent(child.Type):
			pending = append(pending, child)
		default:
			if err := flush(); err != nil {
				return err
			}
			w.line(indent+1, unknownBlockComment(child, i))
		}
	}
	if err := flush(); err != nil {
		return err
	}

	w.line(indent, "</mj-section>")
	return nil
}

// columns writes one mj-column per column of a column block. Children are
// distributed across columns the way the canvas lays them out: child i goes
// to column i modulo the column count.
func (w *mjmlWriter) columns(column *blocks.Block, indent int) error {
	count := columnCount(column)
	groups := make([][]*blocks.Block, count)
	for i, child := range column.Children {
		groups[i%count] = append(groups[i%count], child)
	}

	shared := map[string]string{}
	for k, v := range column.Attributes {
		if editorOnlyAttributes[k] || k == "width" || strings.HasPrefix(k, "column-") {
			continue
		}
		shared[k] = v
	}

	for i, group := range groups {
		attrs := make(map[string]string, len(shared)+1)
		for k, v := range shared {
			attrs[k] = v
		}
		if width := column.Attributes["column-"+strconv.Itoa(i)+"-width"]; width != "" {
			attrs["width"] = width
		}

		if len(group) == 0 {
			w.line(indent, "<mj-column"+formatAttributes(attrs)+" />")
			continue
		}
		w.line(indent, "<mj-column"+formatAttributes(attrs)+">")
		if err := w.contents(group, indent+1); err != nil {
			return err
		}
		w.line(indent, "</mj-column>")
	}
	return nil
}

func columnCount(column *blocks.Block) int {
	count, err := strconv.Atoi(strings.TrimSpace(column.Attributes["column-count"]))
	if err != nil || count < 1 {
		return 1
	}
	if count > 4 {
		return 4
	}
	return count
}

func isKnownContent(t blocks.BlockType) bool {
	switch t {
	case blocks.TypeText, blocks.TypeImage, blocks.TypeButton, blocks.TypeDivider, blocks.TypeSpacer:
		return true
	}
	return false
}

func unknownBlockComment(b *blocks.Block, index int) string {
	return fmt.Sprintf("<!-- Unknown block type: %s (%s) -->", escapeContent(string(b.Type)), escapeContent(blocks.IDOf(b, index)))
}

// contents writes leaf blocks
func (w *mjmlWriter) contents(list []*blocks.Block, indent int) error {
	for i, b := range list {
		id := blocks.IDOf(b, i)
		switch b.Type {
		case blocks.TypeText:
			content, err := w.render(b.GetValue("content"), id)
			if err != nil {
				return err
			}
			w.line(indent, "<mj-text"+formatAttributes(b.Attributes)+">"+content+"</mj-text>")
		case blocks.TypeImage:
			attrs := copyAttributes(b.Attributes)
			attrs["src"] = b.GetValue("src")
			attrs["alt"] = b.GetValue("alt")
			if href := b.GetValue("href"); href != "" {
				rendered, err := w.render(href, id)
				if err != nil {
					return err
				}
				attrs["href"] = rendered
			}
			w.line(indent, "<mj-image"+formatAttributes(attrs)+" />")
		case blocks.TypeButton:
			content := b.GetValue("content")
			if content == "" {
				content = "Button"
			}
			content, err := w.render(content, id)
			if err != nil {
				return err
			}
			href := b.GetValue("href")
			if href == "" {
				href = "#"
			}
			href, err = w.render(href, id)
			if err != nil {
				return err
			}
			attrs := copyAttributes(b.Attributes)
			attrs["href"] = href
			w.line(indent, "<mj-button"+formatAttributes(attrs)+">"+content+"</mj-button>")
		case blocks.TypeDivider:
			w.line(indent, "<mj-divider"+formatAttributes(b.Attributes)+" />")
		case blocks.TypeSpacer:
			w.line(indent, "<mj-spacer"+formatAttributes(b.Attributes)+" />")
		}
	}
	return nil
}

func copyAttributes(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs)+2)
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// formatAttributes renders attributes sorted by name, skipping empty values
// and canvas-only layout hints
func formatAttributes(attributes map[string]string) string {
	if len(attributes) == 0 {
		return ""
	}

	keys := make([]string, 0, len(attributes))
	for k, v := range attributes {
		if v == "" || editorOnlyAttributes[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf(` %s="%s"`, k, escapeAttributeValue(attributes[k], k)))
	}
	return sb.String()
}

// escapeAttributeValue escapes attribute values for safe HTML output.
// Ampersands of URL attributes are kept so query strings survive.
func escapeAttributeValue(value string, attributeName string) string {
	isURLAttribute := attributeName == "src" || attributeName == "href" || attributeName == "action"
	looksLikeURL := strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") || strings.HasPrefix(value, "//")

	if !(isURLAttribute && looksLikeURL) {
		value = strings.ReplaceAll(value, "&", "&amp;")
	}
	value = strings.ReplaceAll(value, "\"", "&quot;")
	value = strings.ReplaceAll(value, "'", "&#39;")
	value = strings.ReplaceAll(value, "<", "&lt;")
	value = strings.ReplaceAll(value, ">", "&gt;")
	return value
}

func escapeContent(content string) string {
	content = strings.ReplaceAll(content, "&", "&amp;")
	content = strings.ReplaceAll(content, "<", "&lt;")
	content = strings.ReplaceAll(content, ">", "&gt;")
	return content
}
