package customer

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ss-lucnguyen/seller-inventory/shared/utils"
)

// CustomerRequest represents the create/update customer request
type CustomerRequest struct {
	Name    string  `json:"name" binding:"required"`
	Gender  string  `json:"gender"`
	Mobile  *string `json:"mobile"`
	Address *string `json:"address"`
}

// RegisterRoutes mounts the customer endpoints on an authenticated group
func RegisterRoutes(rg *gin.RouterGroup, svc *Service) {
	customers := rg.Group("/customers")
	{
		customers.GET("", handleList(svc))
		customers.GET("/:id", handleGet(svc))
		customers.POST("", handleCreate(svc))
		customers.PUT("/:id", handleUpdate(svc))
		customers.DELETE("/:id", handleDelete(svc))
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func handleList(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Customers retrieved successfully", list)
	}
}

func handleGet(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		cust, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Customer retrieved successfully", cust)
	}
}

func handleCreate(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CustomerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		cust, err := svc.Create(c.Request.Context(), Input{
			Name:    req.Name,
			Gender:  req.Gender,
			Mobile:  req.Mobile,
			Address: req.Address,
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.CreatedResponse(c, "Customer created successfully", cust)
	}
}

func handleUpdate(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var req CustomerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		cust, err := svc.Update(c.Request.Context(), id, Input{
			Name:    req.Name,
			Gender:  req.Gender,
			Mobile:  req.Mobile,
			Address: req.Address,
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Customer updated successfully", cust)
	}
}

func handleDelete(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Customer deleted successfully", nil)
	}
}
