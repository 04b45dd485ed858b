package app

import (
	"context"

	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/middleware"
	"go-payroll/internal/payroll"
	"go-payroll/internal/rateconfig"
	"go-payroll/internal/rbac"
	"go-payroll/internal/rbac/infra"
	"go-payroll/internal/tax"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	// --- Repositories ---
	rateRepo := rateconfig.NewRepository(gormDB)
	workerRepo := payroll.NewWorkerRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(enforcer)
	if err != nil {
		return err
	}

	// --- Services ---
	rateCache := rateconfig.NewCache(rdb, rateconfig.DefaultCacheTTL, zap.L())
	rateService := rateconfig.NewServiceWithOutbox(gormDB, rateRepo, rateCache, outboxRepo)
	engine := tax.NewEngine(rateService)
	payrollService := payroll.NewService(engine, workerRepo)

	if err := rateService.Seed(context.Background()); err != nil {
		return err
	}

	// --- Handlers ---
	rateHandler := rateconfig.NewHandler(rateService)
	taxHandler := tax.NewHandler(engine, rateService)
	payrollHandler := payroll.NewHandler(payrollService)

	// --- Global middleware ---
	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))
	router.Use(middleware.RateLimitByIP(rate.Limit(20), 40))

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		rateconfig.RegisterRoutes(api, rateHandler, rbacService)
		tax.RegisterRoutes(api, taxHandler, rbacService)
		payroll.RegisterRoutes(api, payrollHandler, rbacService)
	}

	return nil
}
