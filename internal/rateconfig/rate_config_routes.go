package rateconfig

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
	rates := r.Group("/admin/tax-rates")
	rates.Use(middleware.AuthMiddleware())
	{
		rates.GET("", middleware.RBACAuthorize(rbacService, "tax_rates", "read"), handler.GetActiveSet)
		rates.GET("/:category/history", middleware.RBACAuthorize(rbacService, "tax_rates", "read"), handler.GetHistory)
		rates.POST("", middleware.RBACAuthorize(rbacService, "tax_rates", "manage"), handler.Create)
		rates.PUT("/:id/deactivate", middleware.RBACAuthorize(rbacService, "tax_rates", "manage"), handler.Deactivate)
	}
}
