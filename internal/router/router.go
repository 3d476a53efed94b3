package router

import (
	"github.com/gin-gonic/gin"

	"taxdesk/internal/config"
	"taxdesk/internal/handler"
	"taxdesk/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	healthH *handler.HealthHandler,
	fileH *handler.FileHandler,
	batchH *handler.BatchHandler,
	txH *handler.TransactionHandler,
	taxH *handler.TaxHandler,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health check
	r.GET("/health", healthH.Health)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Owner())

	files := v1.Group("/files")
	files.POST("/upload", fileH.Upload)
	files.GET("", fileH.List)
	files.GET("/:id", fileH.Get)
	files.GET("/:id/download", fileH.DownloadURL)

	batches := v1.Group("/batches")
	batches.POST("", batchH.Create)
	batches.GET("", batchH.List)
	batches.GET("/:id", batchH.Get)

	transactions := v1.Group("/transactions")
	transactions.GET("", txH.List)
	transactions.GET("/summary", txH.Summary)
	transactions.GET("/export", txH.ExportCSV)

	tax := v1.Group("/tax")
	tax.GET("/aggregate", taxH.GetAggregate)
	tax.GET("/context", taxH.GetContext)
	tax.POST("/regenerate", taxH.Regenerate)

	return r
}
