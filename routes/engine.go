package routes

import (
	"net/http"

	"dailyread/config"
	"dailyread/middleware"
	"dailyread/views"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewEngine builds the gin engine with middleware, templates and the
// routes that need no controllers.
func NewEngine(cfg *config.Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Logger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Session(cfg.SessionSecret, cfg.SessionTTL))

	r.SetHTMLTemplate(views.Templates())
	r.StaticFS("/static", http.FS(views.Static()))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
