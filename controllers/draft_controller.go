package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"dailyread/middleware"
	"dailyread/models"
	"dailyread/services"
	"dailyread/views"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type DraftController struct {
	draftService *services.DraftService
	postService  *services.PostService
	pages        *PageController
	hubService   *services.HubService
}

func NewDraftController(draftService *services.DraftService, postService *services.PostService, pages *PageController, hubService *services.HubService) *DraftController {
	return &DraftController{
		draftService: draftService,
		postService:  postService,
		pages:        pages,
		hubService:   hubService,
	}
}

func (dc *DraftController) Open(c *gin.Context) {
	dc.setOpen(c, true)
}

func (dc *DraftController) Close(c *gin.Context) {
	dc.setOpen(c, false)
}

func (dc *DraftController) setOpen(c *gin.Context, open bool) {
	sessionID := middleware.SessionID(c)
	if _, err := dc.draftService.SetOpen(sessionID, open); err != nil {
		c.Error(err)
		return
	}
	dc.draftChanged(sessionID, open)
	c.Redirect(http.StatusSeeOther, returnPath(c))
}

// draftChanged tells the session's other tabs to re-render their dialog.
func (dc *DraftController) draftChanged(sessionID string, open bool) {
	dc.hubService.SendToSession(sessionID, "draft_changed", gin.H{"open": open})
}

// Handle serves every button of the create dialog. The posted fields are
// always stored first so nothing typed is lost.
func (dc *DraftController) Handle(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	var form models.DraftForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if tag, ok := c.GetPostForm("remove"); ok {
		if _, err := dc.draftService.RemoveCategory(sessionID, form, tag); err != nil {
			c.Error(err)
			return
		}
		dc.draftChanged(sessionID, true)
		c.Redirect(http.StatusSeeOther, returnPath(c))
		return
	}

	switch c.PostForm("action") {
	case "add_category":
		if _, err := dc.draftService.AddCategory(sessionID, form); err != nil {
			c.Error(err)
			return
		}
		dc.draftChanged(sessionID, true)
		c.Redirect(http.StatusSeeOther, returnPath(c))

	case "cancel":
		if _, err := dc.draftService.Update(sessionID, form); err != nil {
			c.Error(err)
			return
		}
		dc.Close(c)

	case "submit":
		dc.submit(c, sessionID, form)

	default:
		draft, err := dc.draftService.Update(sessionID, form)
		if err != nil {
			c.Error(err)
			return
		}
		dc.draftChanged(sessionID, draft.Open)
		c.Redirect(http.StatusSeeOther, returnPath(c))
	}
}

func (dc *DraftController) submit(c *gin.Context, sessionID string, form models.DraftForm) {
	if _, err := dc.draftService.Stage(sessionID, form); err != nil {
		c.Error(err)
		return
	}

	selectFromReturnPath(c)
	req := requestFromForm(c)
	if err := binding.Validator.ValidateStruct(req); err != nil {
		dc.pages.render(c, http.StatusUnprocessableEntity, &views.Toast{
			Kind:        "error",
			Title:       "Error",
			Description: validationMessage(err),
		})
		return
	}

	post, err := dc.postService.Create(c.Request.Context(), req)
	if err != nil {
		log.Printf("Create post failed: %v", err)
		dc.pages.render(c, http.StatusBadGateway, &views.Toast{
			Kind:        "error",
			Title:       "Error",
			Description: err.Error(),
		})
		return
	}
	log.Printf("Post %d created", post.ID)

	if err := dc.draftService.Reset(sessionID); err != nil {
		c.Error(err)
		return
	}
	dc.draftChanged(sessionID, false)
	c.Redirect(http.StatusSeeOther, returnPath(c)+"?toast=created")
}

// requestFromForm leaves a field nil when the browser did not send it.
// Forms cannot express an empty list, so a missing category is one.
func requestFromForm(c *gin.Context) *models.CreatePostRequest {
	field := func(name string) *string {
		if v, ok := c.GetPostForm(name); ok {
			return &v
		}
		return nil
	}
	categories, _ := c.GetPostFormArray("category")
	if categories == nil {
		categories = []string{}
	}
	return &models.CreatePostRequest{
		Title:       field("title"),
		Description: field("description"),
		Content:     field("content"),
		CoverImage:  field("coverImage"),
		Category:    categories,
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		fields = append(fields, strings.ToLower(name[:1])+name[1:])
	}
	return "Missing fields: " + strings.Join(fields, ", ")
}

// returnPath only allows local paths back into the app.
func returnPath(c *gin.Context) string {
	path := c.PostForm("return")
	if path == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.Contains(path, "?") {
		return "/"
	}
	return path
}

// selectFromReturnPath keeps the post the dialog was opened over selected
// when the page is rendered in place of a redirect.
func selectFromReturnPath(c *gin.Context) {
	if id, ok := strings.CutPrefix(returnPath(c), "/blog/"); ok && id != "" {
		c.Params = append(c.Params, gin.Param{Key: "id", Value: id})
	}
}
