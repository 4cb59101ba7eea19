package export

import (
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/Notifuse/emailbuilder/pkg/blocks"
)

// ToHTML renders an email as table-based HTML without going through MJML.
// It mirrors the canvas layout and is used for quick previews.
func ToHTML(email *blocks.Email) string {
	if email == nil || email.Content == nil {
		return ""
	}

	page := email.Content
	width := page.Attributes["width"]
	if width == "" {
		width = "600px"
	}
	title := email.Subject
	if title == "" {
		title = "Email"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	sb.WriteString(`  <meta charset="utf-8">` + "\n")
	sb.WriteString(`  <meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	sb.WriteString("  <title>" + html.EscapeString(title) + "</title>\n")
	sb.WriteString("</head>\n")
	sb.WriteString(`<body style="` + styleString(page.Attributes, "width", "height") + `">` + "\n")
	sb.WriteString(`<table width="100%" cellpadding="0" cellspacing="0" border="0"><tr><td align="center">` + "\n")
	sb.WriteString(`<table width="` + html.EscapeString(width) + `" cellpadding="0" cellspacing="0" border="0">` + "\n")
	for i, child := range page.Children {
		renderHTMLBlock(&sb, child, i)
	}
	sb.WriteString("</table>\n</td></tr></table>\n</body>\n</html>")

	return sb.String()
}

func renderHTMLBlock(sb *strings.Builder, b *blocks.Block, index int) {
	if b == nil {
		return
	}

	style := styleString(b.Attributes, "column-count", "direction", "spacing")
	switch b.Type {
	case blocks.TypeSection:
		sb.WriteString(`<tr><td style="` + style + `">` + "\n")
		sb.WriteString(`<table width="100%" cellpadding="0" cellspacing="0" border="0">` + "\n")
		for i, child := range b.Children {
			renderHTMLBlock(sb, child, i)
		}
		sb.WriteString("</table>\n</td></tr>\n")
	case blocks.TypeColumn:
		renderHTMLColumns(sb, b, style)
	case blocks.TypeText:
		sb.WriteString(`<tr><td style="` + style + `">` + b.GetValue("content") + "</td></tr>\n")
	case blocks.TypeImage:
		sb.WriteString(`<tr><td style="` + style + `">`)
		sb.WriteString(`<img src="` + escapeAttributeValue(b.GetValue("src"), "src") + `" alt="` + escapeAttributeValue(b.GetValue("alt"), "alt") + `" style="max-width: 100%; height: auto; display: block;" />`)
		sb.WriteString("</td></tr>\n")
	case blocks.TypeButton:
		href := b.GetValue("href")
		if href == "" {
			href = "#"
		}
		content := b.GetValue("content")
		if content == "" {
			content = "Button"
		}
		sb.WriteString(`<tr><td style="` + style + `; text-align: center;">`)
		sb.WriteString(`<a href="` + escapeAttributeValue(href, "href") + `" style="display: inline-block; padding: ` +
			html.EscapeString(attrOr(b, "padding", "10px 25px")) + `; background-color: ` +
			html.EscapeString(attrOr(b, "background-color", "#414141")) + `; color: ` +
			html.EscapeString(attrOr(b, "color", "#ffffff")) + `; text-decoration: none; border-radius: ` +
			html.EscapeString(attrOr(b, "border-radius", "3px")) + `;">` + content + "</a>")
		sb.WriteString("</td></tr>\n")
	case blocks.TypeDivider:
		sb.WriteString(`<tr><td style="` + style + `">`)
		sb.WriteString(`<hr style="border: none; border-top: 1px solid ` + html.EscapeString(attrOr(b, "border-color", "#cccccc")) + `; margin: 10px 0;" />`)
		sb.WriteString("</td></tr>\n")
	case blocks.TypeSpacer:
		sb.WriteString(`<tr><td style="height: ` + html.EscapeString(attrOr(b, "height", "20px")) + `; font-size: 1px; line-height: 1px;">&nbsp;</td></tr>` + "\n")
	default:
		sb.WriteString(unknownBlockComment(b, index) + "\n")
	}
}

func renderHTMLColumns(sb *strings.Builder, column *blocks.Block, style string) {
	count := columnCount(column)
	groups := make([][]*blocks.Block, count)
	for i, child := range column.Children {
		groups[i%count] = append(groups[i%count], child)
	}

	sb.WriteString(`<tr><td style="` + style + `">` + "\n")
	sb.WriteString(`<table width="100%" cellpadding="0" cellspacing="0" border="0"><tr>` + "\n")
	for i, group := range groups {
		width := column.Attributes["column-"+strconv.Itoa(i)+"-width"]
		if width == "" {
			width = strconv.Itoa(100/count) + "%"
		}
		sb.WriteString(`<td valign="top" width="` + html.EscapeString(width) + `">` + "\n")
		sb.WriteString(`<table width="100%" cellpadding="0" cellspacing="0" border="0">` + "\n")
		for j, child := range group {
			renderHTMLBlock(sb, child, j)
		}
		sb.WriteString("</table>\n</td>\n")
	}
	sb.WriteString("</tr></table>\n</td></tr>\n")
}

func attrOr(b *blocks.Block, key, fallback string) string {
	if v := b.Attributes[key]; v != "" {
		return v
	}
	return fallback
}

// styleString turns attributes into an inline CSS declaration list sorted by property
func styleString(attributes map[string]string, skip ...string) string {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}

	keys := make([]string, 0, len(attributes))
	for k, v := range attributes {
		if v == "" || skipped[k] || strings.HasPrefix(k, "column-") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+attributes[k])
	}
	return html.EscapeString(strings.Join(parts, "; "))
}
