package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/assistant"
	"storefront-service/internal/models"
)

type AssistantHandler struct {
	registry *assistant.Registry
	catalog  Catalog
}

func NewAssistantHandler(registry *assistant.Registry, catalog Catalog) *AssistantHandler {
	return &AssistantHandler{registry: registry, catalog: catalog}
}

// Chat sends one user turn to the shopping assistant and streams the reply
// as server-sent "fragment" events followed by a "done" event
// @Summary Chat with the assistant
// @Tags Assistant
// @Accept json
// @Produce text/event-stream
// @Param request body models.ChatRequest true "Chat turn"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} models.ErrorResponse
// @Router /assistant/chat [post]
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	ctx := c.Request.Context()
	session := h.registry.Session(req.ConversationID)
	catalog := h.catalog.GetAll(ctx)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	for fragment := range session.Send(ctx, req.Message, catalog) {
		c.SSEvent("fragment", fragment)
		c.Writer.Flush()
	}
	if ctx.Err() == nil {
		c.SSEvent("done", "")
		c.Writer.Flush()
	}
}

// EndSession forgets a conversation
// @Summary End assistant conversation
// @Tags Assistant
// @Param id path string true "Conversation ID"
// @Success 204
// @Router /assistant/sessions/{id} [delete]
func (h *AssistantHandler) EndSession(c *gin.Context) {
	h.registry.Remove(c.Param("id"))
	c.Status(http.StatusNoContent)
}
