package canteenserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/campus-canteen/internal/domains/users/adapters/http/mapper"
	"github.com/Apurer/campus-canteen/internal/domains/users/application/types"
	userports "github.com/Apurer/campus-canteen/internal/domains/users/ports"
)

// UsersAPI implements account administration.
type UsersAPI struct {
	service userports.Service
}

// NewUsersAPI wires dependencies.
func NewUsersAPI(service userports.Service) UsersAPI {
	return UsersAPI{service: service}
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

// Get /api/users
// Lists accounts, newest first
func (api *UsersAPI) ListUsers(c *gin.Context) {
	input := types.ListUsersInput{
		Role:       c.Query("role"),
		Department: c.Query("department"),
	}
	if raw := c.Query("isActive"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondBadRequest(c, "isActive must be true or false")
			return
		}
		input.Active = &active
	}
	users, err := api.service.ListUsers(c.Request.Context(), principal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"count": len(users), "users": userhttpmapper.FromDomainUsers(users)})
}

// Patch /api/users/:id/status
// Activates or deactivates an account
func (api *UsersAPI) ToggleStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := api.service.ToggleStatus(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	message := "User deactivated successfully"
	if user.Active {
		message = "User activated successfully"
	}
	respondOK(c, http.StatusOK, gin.H{"message": message, "user": userhttpmapper.FromDomainUser(user)})
}

// Patch /api/users/:id/role
func (api *UsersAPI) SetRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var payload roleRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	user, err := api.service.SetRole(c.Request.Context(), principal(c), id, payload.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "User role updated successfully", "user": userhttpmapper.FromDomainUser(user)})
}
