package controllers

import (
	"errors"
	"net/http"

	"dailyread/models"
	"dailyread/services"

	"github.com/gin-gonic/gin"
)

type PostController struct {
	postService *services.PostService
}

func NewPostController(postService *services.PostService) *PostController {
	return &PostController{postService: postService}
}

// ListPosts godoc
// @Summary List posts
// @Description Cached list of posts, optionally filtered by a case-insensitive title substring
// @Tags posts
// @Produce json
// @Param search query string false "Title substring"
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} map[string]string
// @Router /posts [get]
func (pc *PostController) ListPosts(c *gin.Context) {
	result := pc.postService.List(c.Request.Context())
	switch {
	case result.IsError():
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch posts"})
		return
	case result.IsLoading():
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Posts are still loading"})
		return
	}

	posts := services.FilterPosts(result.Data, c.Query("search"))
	c.JSON(http.StatusOK, gin.H{
		"data":       posts,
		"count":      len(posts),
		"updated_at": result.UpdatedAt,
	})
}

// GetPost godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /posts/{id} [get]
func (pc *PostController) GetPost(c *gin.Context) {
	id := parsePostID(c.Param("id"))
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	result := pc.postService.Get(c.Request.Context(), id)
	switch {
	case result.IsError() && !errors.Is(result.Err, services.ErrNotFound):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch post"})
		return
	case result.IsLoading():
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Post is still loading"})
		return
	case result.IsError(), result.Data == nil:
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result.Data})
}

// CreatePost godoc
// @Summary Create a post
// @Description Sends the draft to the blog service and marks the cached list stale
// @Tags posts
// @Accept json
// @Produce json
// @Param post body models.CreatePostRequest true "Draft"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /posts [post]
func (pc *PostController) CreatePost(c *gin.Context) {
	var req models.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := pc.postService.Create(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create post: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"data":    post,
	})
}
