package controllers

import (
	"net/http"

	"freshfetch/services"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	dashboardService *services.DashboardService
}

func NewDashboardController(dashboardService *services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// GetStats godoc
// @Summary Dashboard statistics
// @Description Admin, manager and user each get their own figures
// @Tags Dashboard
// @Security BearerAuth
// @Produce json
// @Param scope query string false "Managers: restrict to own products" Enums(mine)
// @Success 200 {object} models.Response
// @Router /dashboard/stats [get]
func (ctrl *DashboardController) GetStats(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	stats, err := ctrl.dashboardService.Stats(c.Request.Context(), p, c.Query("scope"))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Dashboard retrieved", stats)
}
