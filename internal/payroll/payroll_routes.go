package payroll

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	group := r.Group("/payroll")
	group.Use(middleware.AuthMiddleware())
	{
		group.POST("/calculate", middleware.RBACAuthorize(rbacService, "payroll", "calculate"), handler.Calculate)
		group.POST("/calculate/workers", middleware.RBACAuthorize(rbacService, "payroll", "calculate"), handler.CalculateWorkers)
		group.GET("/workers/:id", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetWorkerPayroll)
	}
}
