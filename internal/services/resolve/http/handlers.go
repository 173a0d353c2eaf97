// Package http provides http transport for resolution
package http

import (
	stdhttp "net/http"

	"drsgate/internal/modkit/httpkit"
	"drsgate/internal/services/resolve/domain"
	svc "drsgate/internal/services/resolve/service"
)

// Register mounts resolution endpoints on the given router
func Register(r httpkit.Router, s *svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.ResolveInput](r, "/resolve", h.resolve)
}

type handlers struct{ svc *svc.Service }

// @Summary Resolve a DRS URI to metadata and an access URL
// @Tags Objects
// @Accept json
// @Produce json
// @Param payload body domain.ResolveInput true "Resolution request"
// @Success 200 {object} domain.ResolveOutput "ok"
// @Router /objects/resolve [post]
func (h *handlers) resolve(r *stdhttp.Request, in domain.ResolveInput) (any, error) {
	return h.svc.Resolve(r.Context(), in)
}
