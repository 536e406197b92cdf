package views

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"dailyread/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Toast is a transient notification shown at the top of the page.
type Toast struct {
	Kind        string
	Title       string
	Description string
}

// HomePage backs both routes: the list pane, the optional detail pane and
// the create dialog.
type HomePage struct {
	Search string

	ListLoading bool
	ListError   bool
	Posts       []models.Post

	HasSelection   bool
	SelectedID     models.PostID
	DetailLoading  bool
	DetailNotFound bool
	Post           *models.Post

	Draft *models.Draft
	Toast *Toast

	// Keys the page re-renders for: Watch when they are invalidated,
	// Pending when a fetch the page could not wait for resolves.
	Watch   []string
	Pending []string

	// RenderedAt is the RFC 3339 time the page started reading. The
	// websocket handshake echoes it to learn which pending keys settled
	// before the socket was registered.
	RenderedAt string
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ReadableDate formats a post date as "Jan, 2, 2006". Dates in an unknown
// format are shown as they are.
func ReadableDate(date string) string {
	raw := strings.TrimSpace(date)
	if i := strings.Index(raw, " ("); i > 0 {
		raw = raw[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("Jan, 2, 2006")
		}
	}
	return date
}

// ReadingTime estimates minutes to read content at 200 words a minute.
func ReadingTime(content string) int {
	minutes := len(strings.Fields(content)) / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}

var functions = template.FuncMap{
	"readableDate": ReadableDate,
	"readingTime":  ReadingTime,
	"lower":        strings.ToLower,
	"join":         strings.Join,
	"seq":          seq,
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func Templates() *template.Template {
	return template.Must(template.New("").Funcs(functions).ParseFS(templateFS, "templates/*.html"))
}

func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
