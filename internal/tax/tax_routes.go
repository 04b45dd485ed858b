package tax

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
	taxes := r.Group("/taxes")
	taxes.Use(middleware.AuthMiddleware())
	{
		taxes.POST("/calculate", middleware.RBACAuthorize(rbacService, "taxes", "calculate"), handler.Calculate)
		taxes.GET("/rates", middleware.RBACAuthorize(rbacService, "taxes", "read"), handler.GetRates)
		taxes.GET("/deadlines", middleware.RBACAuthorize(rbacService, "taxes", "read"), handler.GetDeadlines)
	}
}
