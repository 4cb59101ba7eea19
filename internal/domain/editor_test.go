package domain

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/emailbuilder/pkg/blocks"
)

func intPtr(i int) *int {
	return &i
}

func TestDocumentRequest(t *testing.T) {
	var req DocumentRequest
	require.NoError(t, req.FromURLParams(url.Values{"document_id": {"doc1"}}))
	assert.Equal(t, "doc1", req.DocumentID)

	assert.Error(t, req.FromURLParams(url.Values{}))
	assert.Error(t, req.FromURLParams(url.Values{"document_id": {"../x"}}))
}

func TestAddBlockRequest_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		req     AddBlockRequest
		wantErr string
	}{
		{name: "valid", req: AddBlockRequest{DocumentID: "doc1", Type: blocks.TypeText}},
		{name: "valid with parent", req: AddBlockRequest{DocumentID: "doc1", ParentID: "s1", Type: blocks.TypeText}},
		{name: "missing document", req: AddBlockRequest{Type: blocks.TypeText}, wantErr: "document_id is required"},
		{name: "invalid parent", req: AddBlockRequest{DocumentID: "doc1", ParentID: "a b", Type: blocks.TypeText}, wantErr: "parent_id is invalid"},
		{name: "missing type", req: AddBlockRequest{DocumentID: "doc1"}, wantErr: "type is required"},
		{name: "nested page", req: AddBlockRequest{DocumentID: "doc1", Type: blocks.TypePage}, wantErr: "page cannot be nested"},
		{name: "valid url", req: AddBlockRequest{DocumentID: "doc1", Type: blocks.TypeButton, Data: map[string]interface{}{"href": "https://example.com/a?b=c"}}},
		{name: "anchor", req: AddBlockRequest{DocumentID: "doc1", Type: blocks.TypeButton, Data: map[string]interface{}{"href": "#"}}},
		{name: "mailto", req: AddBlockRequest{DocumentID: "doc1", Type: blocks.TypeButton, Data: map[string]interface{}{"href": "mailto:a@b.co"}}},
		{name: "liquid", req: AddBlockRequest{DocumentID: "doc1", Type: blocks.TypeButton, Data: map[string]interface{}{"href": "{{ unsubscribe_url }}"}}},
		{name: "invalid url", req: AddBlockRequest{DocumentID: "doc1", Type: blocks.TypeImage, Data: map[string]interface{}{"src": "not a url"}}, wantErr: "src must be a valid URL"},
		{name: "non string url", req: AddBlockRequest{DocumentID: "doc1", Type: blocks.TypeImage, Data: map[string]interface{}{"src": 12}}, wantErr: "src must be a string"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestIndexOrAppend(t *testing.T) {
	assert.Equal(t, -1, (&AddBlockRequest{}).IndexOrAppend())
	assert.Equal(t, 2, (&AddBlockRequest{Index: intPtr(2)}).IndexOrAppend())
	assert.Equal(t, -1, (&MoveBlockRequest{}).IndexOrAppend())
	assert.Equal(t, 0, (&MoveBlockRequest{Index: intPtr(0)}).IndexOrAppend())
	assert.Equal(t, 3, (&DropRequest{Index: intPtr(3)}).IndexOrAppend())
}

func TestUpdateBlockRequest_Validate(t *testing.T) {
	assert.NoError(t, (&UpdateBlockRequest{DocumentID: "doc1", BlockID: "b1", Attributes: map[string]string{"color": "#fff"}}).Validate())
	assert.Error(t, (&UpdateBlockRequest{DocumentID: "doc1", BlockID: "b1"}).Validate())
	assert.Error(t, (&UpdateBlockRequest{DocumentID: "doc1", Data: map[string]interface{}{"content": "x"}}).Validate())
	assert.Error(t, (&UpdateBlockRequest{DocumentID: "doc1", BlockID: "b1", Data: map[string]interface{}{"href": "javascript alert"}}).Validate())
}

func TestBlockAndMoveRequests_Validate(t *testing.T) {
	assert.NoError(t, (&BlockRequest{DocumentID: "doc1", BlockID: "b1"}).Validate())
	assert.Error(t, (&BlockRequest{DocumentID: "doc1"}).Validate())

	assert.NoError(t, (&MoveBlockRequest{DocumentID: "doc1", BlockID: "b1"}).Validate())
	assert.NoError(t, (&MoveBlockRequest{DocumentID: "doc1", BlockID: "b1", ParentID: "s1", Index: intPtr(0)}).Validate())
	assert.Error(t, (&MoveBlockRequest{DocumentID: "doc1", ParentID: "s1"}).Validate())
	assert.Error(t, (&MoveBlockRequest{DocumentID: "doc1", BlockID: "b1", ParentID: "s 1"}).Validate())
}

func TestDropRequest_Validate(t *testing.T) {
	payload, err := (&DropRequest{DocumentID: "doc1", Payload: "block:text"}).Validate()
	require.NoError(t, err)
	assert.Equal(t, blocks.NewBlockPayload(blocks.TypeText), payload)

	payload, err = (&DropRequest{DocumentID: "doc1", Payload: "move:b1", ParentID: "s1"}).Validate()
	require.NoError(t, err)
	assert.Equal(t, blocks.MoveBlockPayload("b1"), payload)

	_, err = (&DropRequest{DocumentID: "doc1"}).Validate()
	assert.Error(t, err)

	_, err = (&DropRequest{DocumentID: "doc1", Payload: "move:"}).Validate()
	assert.Error(t, err)
}

func TestBodySubjectSelect_Validate(t *testing.T) {
	assert.NoError(t, (&UpdateBodyRequest{DocumentID: "doc1", Attributes: map[string]string{"width": "640px"}}).Validate())
	assert.Error(t, (&UpdateBodyRequest{DocumentID: "doc1"}).Validate())

	assert.NoError(t, (&UpdateSubjectRequest{DocumentID: "doc1", Subject: ""}).Validate())
	assert.Error(t, (&UpdateSubjectRequest{DocumentID: "doc1", Subject: strings.Repeat("s", 999)}).Validate())

	assert.NoError(t, (&SelectBlockRequest{DocumentID: "doc1"}).Validate())
	assert.NoError(t, (&SelectBlockRequest{DocumentID: "doc1", BlockID: "b1"}).Validate())
	assert.Error(t, (&SelectBlockRequest{DocumentID: "doc1", BlockID: "b 1"}).Validate())
}

func TestExportRequest(t *testing.T) {
	req := &ExportRequest{DocumentID: "doc1", TemplateData: map[string]interface{}{"name": "Ada"}, IncludeXMLTag: true}
	require.NoError(t, req.Validate())

	opts := req.Options()
	assert.Equal(t, "Ada", opts.TemplateData["name"])
	assert.True(t, opts.IncludeXMLTag)

	assert.Error(t, (&ExportRequest{}).Validate())

	format, err := ParseExportFormat("html")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatHTML, format)
	_, err = ParseExportFormat("pdf")
	assert.Error(t, err)
}
