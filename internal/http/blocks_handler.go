package http

import (
	"net/http"

	"github.com/Notifuse/emailbuilder/internal/http/middleware"
	"github.com/Notifuse/emailbuilder/pkg/blocks"
)

// BlockTypeInfo describes a block type offered in the palette
type BlockTypeInfo struct {
	Type              blocks.BlockType       `json:"type"`
	Name              string                 `json:"name"`
	Container         bool                   `json:"container"`
	AllowedChildren   []blocks.BlockType     `json:"allowed_children"`
	DefaultData       map[string]interface{} `json:"default_data"`
	DefaultAttributes map[string]string      `json:"default_attributes"`
}

type BlocksHandler struct {
	registry     *blocks.Registry
	getJWTSecret func() ([]byte, error)
}

func NewBlocksHandler(registry *blocks.Registry, getJWTSecret func() ([]byte, error)) *BlocksHandler {
	return &BlocksHandler{
		registry:     registry,
		getJWTSecret: getJWTSecret,
	}
}

func (h *BlocksHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := middleware.NewAuthMiddleware(h.getJWTSecret).RequireAuth()
	mux.Handle("/api/blocks.types", requireAuth(http.HandlerFunc(h.handleTypes)))
}

func (h *BlocksHandler) handleTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	types := []BlockTypeInfo{}
	for _, blockType := range h.registry.Types() {
		def, _ := h.registry.Definition(blockType)
		allowed := blocks.ValidChildren[blockType]
		if allowed == nil {
			allowed = []blocks.BlockType{}
		}
		types = append(types, BlockTypeInfo{
			Type:              blockType,
			Name:              def.Name,
			Container:         blocks.IsContainer(blockType),
			AllowedChildren:   allowed,
			DefaultData:       def.DefaultData,
			DefaultAttributes: def.DefaultAttributes,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"types": types,
	})
}
