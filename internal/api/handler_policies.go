package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hypersec/macjanitor/internal/policy"
)

// PolicyHandler handles policy inspection requests
type PolicyHandler struct {
	registry *policy.Registry
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(registry *policy.Registry) *PolicyHandler {
	return &PolicyHandler{
		registry: registry,
	}
}

// policyResponse is the read-only API view of a policy
type policyResponse struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Filter      policy.FilterConfig `json:"filter"`
	Idle        policy.IdleConfig   `json:"idle"`
}

func toPolicyResponse(p *policy.Policy) policyResponse {
	return policyResponse{
		Name:        p.Name,
		Description: p.Description,
		Filter:      p.Filter,
		Idle:        p.Idle,
	}
}

// List handles GET /api/v1/policies
func (h *PolicyHandler) List(c echo.Context) error {
	policies := h.registry.List()

	out := make([]policyResponse, 0, len(policies))
	for _, p := range policies {
		out = append(out, toPolicyResponse(p))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"policies": out,
	})
}

// Get handles GET /api/v1/policies/:name
func (h *PolicyHandler) Get(c echo.Context) error {
	p, err := h.registry.Get(c.Param("name"))
	if err != nil {
		return ErrorNotFound(c, err.Error())
	}

	return c.JSON(http.StatusOK, toPolicyResponse(p))
}
