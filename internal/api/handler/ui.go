package handler

import (
	_ "embed"
	"net/http"

	"github.com/weatherlamp/weatherlamp/internal/api/response"
)

//go:embed web/index.html
var uiPage []byte

// UIHandler serves the embedded configuration page.
type UIHandler struct{}

// NewUIHandler creates a UIHandler.
func NewUIHandler() *UIHandler {
	return &UIHandler{}
}

// ServePage returns the single-page UI.
func (h *UIHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	response.HTML(w, r, uiPage)
}
