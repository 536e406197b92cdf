package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PostID accepts both JSON numbers and numeric strings, since some blog
// services hand out string ids.
type PostID int64

func (id *PostID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return fmt.Errorf("post id %q is not an integer", s)
		}
		*id = PostID(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("post id: %w", err)
	}
	*id = PostID(n)
	return nil
}

func (id PostID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

type Post struct {
	ID          PostID   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	CoverImage  string   `json:"coverImage"`
	Category    []string `json:"category"`
	Date        string   `json:"date"`
}

// NewPost is the body sent to the blog service. It has no id: the service assigns one.
type NewPost struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	CoverImage  string   `json:"coverImage"`
	Category    []string `json:"category"`
	Date        string   `json:"date"`
}

// CreatePostRequest only checks that every field is present with the right type.
type CreatePostRequest struct {
	Title       *string  `json:"title" form:"title" binding:"required"`
	Description *string  `json:"description" form:"description" binding:"required"`
	Content     *string  `json:"content" form:"content" binding:"required"`
	CoverImage  *string  `json:"coverImage" form:"coverImage" binding:"required"`
	Category    []string `json:"category" form:"category" binding:"required"`
}

// ToNewPost stamps the draft with the submission time and normalizes its categories.
func (r *CreatePostRequest) ToNewPost(now time.Time) NewPost {
	return NewPost{
		Title:       deref(r.Title),
		Description: deref(r.Description),
		Content:     deref(r.Content),
		CoverImage:  deref(r.CoverImage),
		Category:    NormalizeCategories(r.Category),
		Date:        now.Format(time.RFC3339),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// AddCategory appends tag upper-cased unless it is blank or already present.
func AddCategory(categories []string, tag string) ([]string, bool) {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if tag == "" {
		return categories, false
	}
	for _, existing := range categories {
		if existing == tag {
			return categories, false
		}
	}
	return append(categories, tag), true
}

func RemoveCategory(categories []string, tag string) []string {
	out := make([]string, 0, len(categories))
	for _, existing := range categories {
		if existing != tag {
			out = append(out, existing)
		}
	}
	return out
}

// NormalizeCategories applies AddCategory to every tag in order. The result is never nil.
func NormalizeCategories(categories []string) []string {
	out := []string{}
	for _, tag := range categories {
		out, _ = AddCategory(out, tag)
	}
	return out
}
