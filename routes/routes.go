package routes

import (
	"net/http"

	"dailyread/controllers"
	"dailyread/handlers"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, pageController *controllers.PageController, draftController *controllers.DraftController, postController *controllers.PostController, w *handlers.WebSocketHandler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Both paths render the same page; only the selection differs.
	r.GET("/", pageController.Home)
	r.GET("/blog/:id", pageController.Home)

	drafts := r.Group("/drafts")
	{
		drafts.POST("", draftController.Handle)
		drafts.POST("/open", draftController.Open)
		drafts.POST("/close", draftController.Close)
	}

	r.GET("/ws", w.HandleWebSocket)

	api := r.Group("/api/v1")
	{
		posts := api.Group("/posts")
		{
			posts.GET("", postController.ListPosts)
			posts.GET("/:id", postController.GetPost)
			posts.POST("", postController.CreatePost)
		}
	}
}
