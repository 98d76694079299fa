// Package handler serves the brightstub REST and streaming endpoints.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/brightchat/internal/brightstub/scenario"
	"github.com/kiosk404/brightchat/internal/pkg/core"
)

// AgentResponse is one entry of GET /agents.
type AgentResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tools       []string `json:"tools,omitempty"`
}

// AgentHandler lists the scripted agents.
type AgentHandler struct {
	catalog *scenario.Catalog
}

// NewAgentHandler creates a new AgentHandler.
func NewAgentHandler(catalog *scenario.Catalog) *AgentHandler {
	return &AgentHandler{catalog: catalog}
}

// List handles GET /agents.
func (h *AgentHandler) List(c *gin.Context) {
	list := h.catalog.List()
	resp := make([]AgentResponse, 0, len(list))
	for _, s := range list {
		resp = append(resp, AgentResponse{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Tools:       s.Tools,
		})
	}
	core.WriteResponse(c, nil, gin.H{"data": resp})
}
