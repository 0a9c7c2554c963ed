package report

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ss-lucnguyen/seller-inventory/shared/utils"
)

const dateLayout = "2006-01-02"

// RegisterRoutes mounts the report endpoints on an authenticated group
func RegisterRoutes(rg *gin.RouterGroup, svc *Service) {
	reports := rg.Group("/reports")
	{
		reports.GET("/daily-sales", handleDailySales(svc))
		reports.GET("/sales-summary", handleSalesSummary(svc))
	}
}

func handleDailySales(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := time.Now()
		if raw := c.Query("date"); raw != "" {
			parsed, err := time.Parse(dateLayout, raw)
			if err != nil {
				utils.BadRequestResponse(c, "invalid date, expected YYYY-MM-DD")
				return
			}
			date = parsed
		}
		report, err := svc.DailySales(c.Request.Context(), date)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Report generated successfully", report)
	}
}

func handleSalesSummary(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, err := time.Parse(dateLayout, c.Query("from"))
		if err != nil {
			utils.BadRequestResponse(c, "invalid from date, expected YYYY-MM-DD")
			return
		}
		to, err := time.Parse(dateLayout, c.Query("to"))
		if err != nil {
			utils.BadRequestResponse(c, "invalid to date, expected YYYY-MM-DD")
			return
		}
		summary, err := svc.Summary(c.Request.Context(), from, to)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Report generated successfully", summary)
	}
}
