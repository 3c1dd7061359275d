package admin

import (
	"github.com/storefront-next/internal/authz"
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AdminGetAuthzMe 当前会话角色的生效策略与能力
func (h *Handler) AdminGetAuthzMe(c *gin.Context) {
	user, ok := handlershared.GetSessionUser(c)
	if !ok {
		respondError(c, response.CodeUnauthorized, "Please login to continue", nil)
		return
	}
	policies := []authz.Policy{}
	if h.AuthzService != nil {
		result, err := h.AuthzService.PoliciesForRoles(user.Roles)
		if err != nil {
			respondError(c, response.CodeInternal, "Failed to load permissions", err)
			return
		}
		policies = result
	}
	response.Success(c, gin.H{
		"username":     user.Username,
		"roles":        user.Roles,
		"policies":     policies,
		"capabilities": h.OrderDesk.CapabilitiesFor(user),
	})
}
