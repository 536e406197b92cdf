package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"dailyread/middleware"
	"dailyread/models"
	"dailyread/services"
	"dailyread/views"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type PageController struct {
	postService  *services.PostService
	draftService *services.DraftService
	renderWait   time.Duration
}

func NewPageController(postService *services.PostService, draftService *services.DraftService, renderWait time.Duration) *PageController {
	return &PageController{
		postService:  postService,
		draftService: draftService,
		renderWait:   renderWait,
	}
}

// Home renders "/" and "/blog/:id". The selected post comes from the path only.
func (pc *PageController) Home(c *gin.Context) {
	var toast *views.Toast
	if c.Query("toast") == "created" {
		toast = &views.Toast{Kind: "success", Title: "Success!", Description: "Your blog post has been created."}
	}
	pc.render(c, http.StatusOK, toast)
}

func (pc *PageController) render(c *gin.Context, status int, toast *views.Toast) {
	page := pc.buildPage(c)
	page.Toast = toast
	c.HTML(status, "home.html", page)
}

func (pc *PageController) buildPage(c *gin.Context) views.HomePage {
	page := views.HomePage{
		Search:     c.Query("q"),
		RenderedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	// Reads that do not resolve within renderWait render as loading.
	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.renderWait)
	defer cancel()

	var (
		list   models.QueryResult[[]models.Post]
		detail models.QueryResult[*models.Post]
	)
	idParam, selected := c.Params.Get("id")

	var g errgroup.Group
	g.Go(func() error {
		list = pc.postService.List(ctx)
		return nil
	})
	if selected {
		page.HasSelection = true
		page.SelectedID = parsePostID(idParam)
		g.Go(func() error {
			detail = pc.postService.Get(ctx, page.SelectedID)
			return nil
		})
	}
	_ = g.Wait()

	listKey := models.ListKey().String()
	page.Watch = append(page.Watch, listKey)
	switch {
	case list.IsLoading():
		page.ListLoading = true
		page.Pending = append(page.Pending, listKey)
	case list.IsError():
		log.Printf("List posts failed: %v", list.Err)
		page.ListError = true
	default:
		page.Posts = services.FilterPosts(list.Data, page.Search)
	}

	if selected {
		switch {
		case detail.IsLoading():
			page.DetailLoading = true
			page.Pending = append(page.Pending, models.PostKey(page.SelectedID).String())
		case detail.IsError(), !detail.HasData, detail.Data == nil:
			if detail.Err != nil {
				log.Printf("Get post %s failed: %v", idParam, detail.Err)
			}
			page.DetailNotFound = true
		default:
			page.Post = detail.Data
		}
	}

	draft, err := pc.draftService.Get(middleware.SessionID(c))
	if err != nil {
		log.Printf("Load draft failed: %v", err)
		draft = &models.Draft{Category: []string{}}
	}
	page.Draft = draft

	return page
}

// parsePostID returns 0, which disables the read, for anything but a positive integer.
func parsePostID(raw string) models.PostID {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return models.PostID(id)
}
