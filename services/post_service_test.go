package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dailyread/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlogAPI struct {
	mu        sync.Mutex
	posts     []models.Post
	created   []models.NewPost
	listCalls int
	getCalls  int
	createErr error
}

func (f *fakeBlogAPI) ListPosts(context.Context) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]models.Post{}, f.posts...), nil
}

func (f *fakeBlogAPI) GetPost(_ context.Context, id models.PostID) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	for _, p := range f.posts {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, &TransportError{Op: "get", StatusCode: 404, Err: ErrNotFound}
}

func (f *fakeBlogAPI) CreatePost(_ context.Context, draft models.NewPost) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, draft)
	post := models.Post{
		ID:          models.PostID(len(f.posts) + 1),
		Title:       draft.Title,
		Description: draft.Description,
		Content:     draft.Content,
		CoverImage:  draft.CoverImage,
		Category:    draft.Category,
		Date:        draft.Date,
	}
	f.posts = append(f.posts, post)
	return &post, nil
}

func newTestPostService(api *fakeBlogAPI) *PostService {
	svc := NewPostService(api, NewQueryCache(NewMemoryStore(time.Hour), time.Hour))
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func strPtr(s string) *string { return &s }

func TestPostServiceCreateRefreshesList(t *testing.T) {
	api := &fakeBlogAPI{posts: []models.Post{{ID: 1, Title: "First"}}}
	svc := newTestPostService(api)
	ctx := context.Background()

	list := svc.List(ctx)
	require.True(t, list.IsSuccess())
	require.Len(t, list.Data, 1)

	post, err := svc.Create(ctx, &models.CreatePostRequest{
		Title:       strPtr("Second"),
		Description: strPtr("d"),
		Content:     strPtr("c"),
		CoverImage:  strPtr("u"),
		Category:    []string{"tech"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PostID(2), post.ID)
	require.Len(t, api.created, 1)
	assert.Equal(t, "2024-01-02T03:04:05Z", api.created[0].Date)
	assert.Equal(t, []string{"TECH"}, api.created[0].Category)

	list = svc.List(ctx)
	require.True(t, list.IsSuccess())
	require.Len(t, list.Data, 2)
	assert.Equal(t, "Second", list.Data[1].Title)
	assert.Equal(t, 2, api.listCalls)
}

func TestPostServiceCreateFailureKeepsList(t *testing.T) {
	api := &fakeBlogAPI{posts: []models.Post{{ID: 1, Title: "First"}}, createErr: errors.New("down")}
	svc := newTestPostService(api)
	ctx := context.Background()

	svc.List(ctx)
	_, err := svc.Create(ctx, &models.CreatePostRequest{Title: strPtr("x"), Description: strPtr(""), Content: strPtr(""), CoverImage: strPtr(""), Category: []string{}})
	require.Error(t, err)

	svc.List(ctx)
	assert.Equal(t, 1, api.listCalls)
}

func TestPostServiceGet(t *testing.T) {
	api := &fakeBlogAPI{posts: []models.Post{{ID: 3, Title: "Three"}}}
	svc := newTestPostService(api)
	ctx := context.Background()

	res := svc.Get(ctx, 3)
	require.True(t, res.IsSuccess())
	assert.Equal(t, "Three", res.Data.Title)

	missing := svc.Get(ctx, 8)
	assert.True(t, missing.IsError())
	assert.ErrorIs(t, missing.Err, ErrNotFound)

	idle := svc.Get(ctx, 0)
	assert.Equal(t, models.StatusIdle, idle.Status)
	assert.Equal(t, 2, api.getCalls)
}

func TestFilterPosts(t *testing.T) {
	posts := []models.Post{
		{ID: 1, Title: "Hello World"},
		{ID: 2, Title: "Goodbye"},
	}

	tests := []struct {
		search string
		want   []models.PostID
	}{
		{"", []models.PostID{1, 2}},
		{"hello", []models.PostID{1}},
		{"o", []models.PostID{1, 2}},
		{"WORLD", []models.PostID{1}},
		{"good", []models.PostID{2}},
		{"zzz", []models.PostID{}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got := []models.PostID{}
			for _, p := range FilterPosts(posts, tt.search) {
				got = append(got, p.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterPostsKeepsOrder(t *testing.T) {
	posts := []models.Post{
		{ID: 3, Title: "world peace"},
		{ID: 1, Title: "Hello World"},
		{ID: 2, Title: "Goodbye"},
	}

	got := []models.PostID{}
	for _, p := range FilterPosts(posts, "World") {
		got = append(got, p.ID)
	}
	assert.Equal(t, []models.PostID{3, 1}, got)
}
