package export

import (
	"strings"
	"testing"

	"github.com/Notifuse/emailbuilder/pkg/blocks"
	"github.com/stretchr/testify/assert"
)

func TestToHTML(t *testing.T) {
	out := ToHTML(testEmail())

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Hello</title>")
	assert.Contains(t, out, `<body style="background-color: #f4f4f4; font-family: Helvetica">`)
	assert.Contains(t, out, `<table width="600px"`)
	assert.Contains(t, out, `<tr><td style="padding: 20px 0px">`)
	assert.Contains(t, out, `<tr><td style="color: #000000; font-size: 13px"><p>Hi {{ name }}</p></td></tr>`)
	assert.Contains(t, out, `<a href="https://example.com/?a=1&b=2"`)
	assert.Contains(t, out, "background-color: #414141")
	assert.True(t, strings.HasSuffix(out, "</html>"))
}

func TestToHTML_Defaults(t *testing.T) {
	assert.Equal(t, "", ToHTML(nil))
	assert.Equal(t, "", ToHTML(&blocks.Email{}))

	out := ToHTML(&blocks.Email{Content: &blocks.Block{
		Type: blocks.TypePage,
		Children: []*blocks.Block{
			{Type: blocks.TypeButton},
			{Type: blocks.TypeSpacer},
			{Type: blocks.TypeDivider},
			{Type: "video"},
		},
	}})

	assert.Contains(t, out, "<title>Email</title>")
	assert.Contains(t, out, `<table width="600px"`)
	assert.Contains(t, out, `<a href="#"`)
	assert.Contains(t, out, ">Button</a>")
	assert.Contains(t, out, "height: 20px")
	assert.Contains(t, out, "border-top: 1px solid #cccccc")
	assert.Contains(t, out, "<!-- Unknown block type: video (video-3) -->")
}

func TestToHTML_Columns(t *testing.T) {
	out := ToHTML(&blocks.Email{Content: &blocks.Block{
		Type: blocks.TypePage,
		Children: []*blocks.Block{
			{Type: blocks.TypeColumn, Attributes: map[string]string{"column-count": "2", "column-1-width": "70%"}, Children: []*blocks.Block{
				{Type: blocks.TypeText, Data: blocks.BlockData{Value: map[string]interface{}{"content": "left"}}},
				{Type: blocks.TypeText, Data: blocks.BlockData{Value: map[string]interface{}{"content": "right"}}},
			}},
		},
	}})

	assert.Contains(t, out, `<td valign="top" width="50%">`)
	assert.Contains(t, out, `<td valign="top" width="70%">`)
	assert.Less(t, strings.Index(out, "left"), strings.Index(out, "right"))
	assert.NotContains(t, out, "column-count")
}

func TestStyleString(t *testing.T) {
	assert.Equal(t, "", styleString(nil))
	assert.Equal(t, "a: 1; c: 3", styleString(map[string]string{"c": "3", "a": "1", "b": "2", "column-0-width": "50%"}, "b"))
	assert.Equal(t, "font-family: &#34;Open Sans&#34;", styleString(map[string]string{"font-family": `"Open Sans"`}))
}
