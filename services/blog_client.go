package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dailyread/metrics"
	"dailyread/models"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNotFound matches transport errors caused by a missing post.
var ErrNotFound = errors.New("post not found")

// TransportError is the only failure the blog client reports: the request
// did not complete, the service answered non-2xx, or the body did not decode.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

type BlogClient struct {
	baseURL string
	hc      *http.Client
}

func NewBlogClient(baseURL string, timeout time.Duration) *BlogClient {
	return &BlogClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (bc *BlogClient) ListPosts(ctx context.Context) ([]models.Post, error) {
	url := bc.baseURL + "/blogs"
	var posts []models.Post
	if err := bc.do(ctx, "list", http.MethodGet, url, nil, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// GetPost accepts either a single object or an array holding the post.
func (bc *BlogClient) GetPost(ctx context.Context, id models.PostID) (*models.Post, error) {
	url := fmt.Sprintf("%s/blogs/%d", bc.baseURL, id)
	var raw json.RawMessage
	if err := bc.do(ctx, "get", http.MethodGet, url, nil, &raw); err != nil {
		return nil, err
	}

	posts, err := decodeOneOrMany(raw)
	if err != nil {
		return nil, &TransportError{Op: "get", URL: url, Err: err}
	}
	for i := range posts {
		if posts[i].ID == id {
			return &posts[i], nil
		}
	}
	return nil, &TransportError{Op: "get", URL: url, StatusCode: http.StatusNotFound, Err: ErrNotFound}
}

func (bc *BlogClient) CreatePost(ctx context.Context, draft models.NewPost) (*models.Post, error) {
	url := bc.baseURL + "/blogs"
	body, err := json.Marshal(draft)
	if err != nil {
		return nil, &TransportError{Op: "create", URL: url, Err: err}
	}

	var raw json.RawMessage
	if err := bc.do(ctx, "create", http.MethodPost, url, body, &raw); err != nil {
		return nil, err
	}

	posts, err := decodeOneOrMany(raw)
	if err != nil {
		return nil, &TransportError{Op: "create", URL: url, Err: err}
	}
	for i := range posts {
		if posts[i].ID != 0 {
			return &posts[i], nil
		}
	}
	return nil, &TransportError{Op: "create", URL: url, Err: errors.New("response has no created post")}
}

func (bc *BlogClient) do(ctx context.Context, op, method, url string, body []byte, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.BlogAPIRequests.WithLabelValues(op, outcome).Inc()
		metrics.BlogAPIDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &TransportError{Op: op, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := bc.hc.Do(req)
	if err != nil {
		return &TransportError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &TransportError{
			Op:         op,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("blog service error: %s", strings.TrimSpace(string(msg))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func decodeOneOrMany(raw json.RawMessage) ([]models.Post, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var posts []models.Post
		if err := json.Unmarshal(trimmed, &posts); err != nil {
			return nil, fmt.Errorf("decode posts: %w", err)
		}
		return posts, nil
	}
	var post models.Post
	if err := json.Unmarshal(trimmed, &post); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}
	return []models.Post{post}, nil
}
