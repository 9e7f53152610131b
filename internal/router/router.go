package router

import (
	"time"

	"sprockets/internal/config"
	"sprockets/internal/handler"
	"sprockets/internal/middleware"
	"sprockets/internal/repository"
	"sprockets/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Deps are the storage-backed dependencies chosen by the composition root.
// The same routes serve the Postgres and the Mongo stores.
type Deps struct {
	Parts    repository.PartRepository
	Products repository.ProductRepository
	Users    repository.UserRepository
	Tx       repository.Transactor
	// Redis backs the part lookup cache; nil disables caching.
	Redis  *redis.Client
	Checks []handler.Check
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Services ─────────────────────────────────────────────────────────────
	cacheTTL := time.Duration(cfg.PartCacheTTLMinutes) * time.Minute
	authSvc := service.NewAuthService(d.Users, cfg)
	partSvc := service.NewPartService(d.Parts, d.Products, d.Tx, d.Redis, cacheTTL)
	productSvc := service.NewProductService(d.Products, d.Parts, d.Tx)
	reportSvc := service.NewReportService(d.Parts, d.Products, d.Users)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	partsH := handler.NewPartsHandler(partSvc)
	productsH := handler.NewProductsHandler(productSvc)
	reportsH := handler.NewReportsHandler(reportSvc, cfg.LowStockThreshold)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.Checks...))

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)

	users := r.Group("/api/users")
	{
		users.POST("", authH.Register)
		users.POST("/login", middleware.LoginRateLimiter(cfg.LoginRateLimitPerMinute), authH.Login)
		users.GET("/me", jwtMW, authH.Me)
	}

	api := r.Group("/api", jwtMW)
	{
		parts := api.Group("/parts")
		{
			parts.POST("", partsH.Add)
			parts.GET("", partsH.List)
			parts.GET("/id/:id", partsH.GetByID)
			parts.GET("/name/:name", partsH.SearchByName)
			parts.PUT("/:id", partsH.Update)
			parts.DELETE("/:id", partsH.Delete)
		}

		products := api.Group("/products")
		{
			products.POST("", productsH.Add)
			products.GET("", productsH.List)
			products.GET("/id/:id", productsH.GetByID)
			products.GET("/name/:name", productsH.SearchByName)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Delete)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/parts-timestamp", reportsH.PartsTimestamp)
			reports.GET("/products-timestamp", reportsH.ProductsTimestamp)
			reports.GET("/users-timestamps", reportsH.UsersTimestamp)
			reports.GET("/low-stock", reportsH.LowStock)
			reports.GET("/parts-by-type", reportsH.PartsByType)
			reports.GET("/product-parts-association", reportsH.ProductPartsAssociation)
		}
	}

	// Swagger UI, outside production only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
