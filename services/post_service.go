package services

import (
	"context"
	"strings"
	"time"

	"dailyread/models"
)

// BlogAPI is the remote blog service as the post service sees it.
type BlogAPI interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id models.PostID) (*models.Post, error)
	CreatePost(ctx context.Context, draft models.NewPost) (*models.Post, error)
}

type PostService struct {
	api   BlogAPI
	cache *QueryCache
	now   func() time.Time
}

func NewPostService(api BlogAPI, cache *QueryCache) *PostService {
	return &PostService{api: api, cache: cache, now: time.Now}
}

func (s *PostService) List(ctx context.Context) models.QueryResult[[]models.Post] {
	return Query(ctx, s.cache, models.ListKey(), QueryOptions{Enabled: true}, s.api.ListPosts)
}

// Get is disabled, and fetches nothing, without a usable id.
func (s *PostService) Get(ctx context.Context, id models.PostID) models.QueryResult[*models.Post] {
	return Query(ctx, s.cache, models.PostKey(id), QueryOptions{Enabled: id > 0}, func(ctx context.Context) (*models.Post, error) {
		return s.api.GetPost(ctx, id)
	})
}

// Create sends the draft with the current time as its date and marks the
// list stale once the service has accepted it.
func (s *PostService) Create(ctx context.Context, req *models.CreatePostRequest) (*models.Post, error) {
	draft := req.ToNewPost(s.now())
	return Mutate(ctx, s.cache, func(ctx context.Context) (*models.Post, error) {
		return s.api.CreatePost(ctx, draft)
	}, models.ListKey())
}

// FilterPosts keeps the posts whose title contains search, ignoring case,
// in their original order.
func FilterPosts(posts []models.Post, search string) []models.Post {
	if search == "" {
		return posts
	}
	needle := strings.ToLower(search)
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			out = append(out, p)
		}
	}
	return out
}
