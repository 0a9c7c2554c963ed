package store

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ss-lucnguyen/seller-inventory/shared/middleware"
	"github.com/ss-lucnguyen/seller-inventory/shared/utils"
)

// UpdateStoreRequest represents the store profile update request
type UpdateStoreRequest struct {
	Name         *string `json:"name"`
	Location     *string `json:"location"`
	Address      *string `json:"address"`
	Industry     *string `json:"industry"`
	Description  *string `json:"description"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
	Currency     *string `json:"currency"`
}

// ResetPasswordRequest represents the manager password reset request
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterRoutes mounts the store endpoints on an authenticated group
func RegisterRoutes(rg *gin.RouterGroup, svc *Service) {
	st := rg.Group("/store")
	{
		st.GET("", handleGetCurrent(svc))
		st.PUT("", handleUpdate(svc))
		st.GET("/users", handleListUsers(svc))
		st.PUT("/users/:id/toggle-active", handleToggleUserActive(svc))
		st.PUT("/users/:id/reset-password", handleResetPassword(svc))
	}

	rg.GET("/stores", middleware.RequireSystemAdmin(), handleListAll(svc))
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func handleGetCurrent(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svc.GetCurrent(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Store retrieved successfully", st)
	}
}

func handleListAll(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		stores, err := svc.ListAll(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Stores retrieved successfully", stores)
	}
}

func handleUpdate(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateStoreRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		st, err := svc.Update(c.Request.Context(), UpdateInput{
			Name:         req.Name,
			Location:     req.Location,
			Address:      req.Address,
			Industry:     req.Industry,
			Description:  req.Description,
			ContactEmail: req.ContactEmail,
			ContactPhone: req.ContactPhone,
			Currency:     req.Currency,
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Store updated successfully", st)
	}
}

func handleListUsers(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.ListUsers(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Users retrieved successfully", users)
	}
}

func handleToggleUserActive(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		user, err := svc.ToggleUserActive(c.Request.Context(), id)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "User updated successfully", user)
	}
}

func handleResetPassword(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var req ResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if err := svc.ResetPassword(c.Request.Context(), id, req.Password); err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Password reset successfully", nil)
	}
}
