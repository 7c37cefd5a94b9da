package canteenserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/campus-canteen/internal/domains/users/adapters/http/mapper"
	"github.com/Apurer/campus-canteen/internal/domains/users/application/types"
	userdomain "github.com/Apurer/campus-canteen/internal/domains/users/domain"
	userports "github.com/Apurer/campus-canteen/internal/domains/users/ports"
)

// AuthAPI implements registration, login and the caller's own profile.
type AuthAPI struct {
	service userports.Service
}

func NewAuthAPI(service userports.Service) AuthAPI {
	return AuthAPI{service: service}
}

type registerRequest struct {
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required"`
	Role              string `json:"role,omitempty"`
	FirstName         string `json:"firstName" binding:"required"`
	LastName          string `json:"lastName" binding:"required"`
	StudentID         string `json:"studentId,omitempty"`
	Department        string `json:"department,omitempty"`
	DietaryPreference string `json:"dietaryPreference,omitempty"`
	Phone             string `json:"phone,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type profileRequest struct {
	FirstName         string `json:"firstName" binding:"required"`
	LastName          string `json:"lastName" binding:"required"`
	Department        string `json:"department,omitempty"`
	DietaryPreference string `json:"dietaryPreference,omitempty"`
	Phone             string `json:"phone,omitempty"`
}

// Post /api/auth/register
// Creates a customer account and signs it in
func (api *AuthAPI) Register(c *gin.Context) {
	var payload registerRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	if _, err := api.service.Register(c.Request.Context(), types.RegisterInput{
		Email:             payload.Email,
		Password:          payload.Password,
		Role:              payload.Role,
		FirstName:         payload.FirstName,
		LastName:          payload.LastName,
		StudentID:         payload.StudentID,
		Department:        payload.Department,
		DietaryPreference: payload.DietaryPreference,
		Phone:             payload.Phone,
	}); err != nil {
		respondError(c, err)
		return
	}
	session, err := api.service.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, gin.H{
		"message":   "User registered successfully",
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      userhttpmapper.FromDomainUser(session.User),
	})
}

// Post /api/auth/login
// Exchanges credentials for a bearer token
func (api *AuthAPI) Login(c *gin.Context) {
	var payload loginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	session, err := api.service.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"message":   "Login successful",
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      userhttpmapper.FromDomainUser(session.User),
	})
}

// Post /api/auth/logout
// Ends the current session
func (api *AuthAPI) Logout(c *gin.Context) {
	if err := api.service.Logout(c.Request.Context(), c.GetString(sessionTokenKey)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Get /api/auth/me
// Returns the signed-in account
func (api *AuthAPI) Me(c *gin.Context) {
	if v, ok := c.Get(currentUserKey); ok {
		if user, ok := v.(*userdomain.User); ok {
			respondOK(c, http.StatusOK, gin.H{"user": userhttpmapper.FromDomainUser(user)})
			return
		}
	}
	user, err := api.service.Profile(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": userhttpmapper.FromDomainUser(user)})
}

// Put /api/auth/profile
// Replaces the caller's profile fields
func (api *AuthAPI) UpdateProfile(c *gin.Context) {
	var payload profileRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	user, err := api.service.UpdateProfile(c.Request.Context(), principal(c), types.ProfileInput{
		FirstName:         payload.FirstName,
		LastName:          payload.LastName,
		Department:        payload.Department,
		DietaryPreference: payload.DietaryPreference,
		Phone:             payload.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Profile updated successfully", "user": userhttpmapper.FromDomainUser(user)})
}
