package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/ss-lucnguyen/seller-inventory/shared/utils"
)

// LoginRequest represents the login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterStoreRequest represents the new-store bootstrap request
type RegisterStoreRequest struct {
	StoreName string  `json:"store_name" binding:"required"`
	Slug      string  `json:"slug" binding:"required"`
	Industry  *string `json:"industry"`
	Username  string  `json:"username" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	FullName  string  `json:"full_name"`
}

// InviteUserRequest represents the invite request
type InviteUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// AcceptInvitationRequest represents the invitation acceptance request
type AcceptInvitationRequest struct {
	Token    string `json:"token" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
}

// RegisterPublicRoutes mounts the unauthenticated auth endpoints
func RegisterPublicRoutes(rg *gin.RouterGroup, svc *Service) {
	rg.POST("/auth/login", handleLogin(svc))
	rg.POST("/auth/register-store", handleRegisterStore(svc))
	rg.POST("/auth/invitations/accept", handleAcceptInvitation(svc))
}

// RegisterRoutes mounts the authenticated auth endpoints
func RegisterRoutes(rg *gin.RouterGroup, svc *Service) {
	rg.GET("/auth/me", handleCurrentUser(svc))
	rg.POST("/auth/invitations", handleInviteUser(svc))
	rg.GET("/auth/invitations", handleListInvitations(svc))
}

func handleLogin(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		result, err := svc.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Login successful", result)
	}
}

func handleRegisterStore(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterStoreRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		result, err := svc.RegisterStore(c.Request.Context(), RegisterStoreInput{
			StoreName: req.StoreName,
			Slug:      req.Slug,
			Industry:  req.Industry,
			Username:  req.Username,
			Email:     req.Email,
			Password:  req.Password,
			FullName:  req.FullName,
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.CreatedResponse(c, "Store registered successfully", result)
	}
}

func handleInviteUser(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req InviteUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		inv, err := svc.InviteUser(c.Request.Context(), req.Email, req.Role)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.CreatedResponse(c, "Invitation created successfully", inv)
	}
}

func handleListInvitations(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListInvitations(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Invitations retrieved successfully", list)
	}
}

func handleAcceptInvitation(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AcceptInvitationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		result, err := svc.AcceptInvitation(c.Request.Context(), AcceptInvitationInput{
			Token:    req.Token,
			Username: req.Username,
			Password: req.Password,
			FullName: req.FullName,
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.CreatedResponse(c, "Invitation accepted successfully", result)
	}
}

func handleCurrentUser(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.CurrentUser(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "User retrieved successfully", user)
	}
}
