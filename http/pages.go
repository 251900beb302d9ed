package http

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/endpoints"
	"github.com/bobinette/paperlog/errors"
	"github.com/bobinette/paperlog/library"
	"github.com/bobinette/paperlog/note"
	"github.com/bobinette/paperlog/view"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"markdown": note.Render,
	"authors": func(p paperlog.Paper) string {
		return strings.Join(p.AuthorNames(), ", ")
	},
	"value": func(i *int) string {
		if i == nil {
			return ""
		}
		return strconv.Itoa(*i)
	},
	"level": func(count int) int {
		if count > 4 {
			return 4
		}
		return count
	},
}).ParseFS(templatesFS, "templates/*.html"))

// PageHandler renders the html pages.
type PageHandler struct {
	endpoint   *endpoints.PaperEndpoint
	controller *library.Controller
	now        func() time.Time
}

func NewPageHandler(ep *endpoints.PaperEndpoint, controller *library.Controller) *PageHandler {
	return &PageHandler{
		endpoint:   ep,
		controller: controller,
		now:        time.Now,
	}
}

func (h *PageHandler) Register(s *GinServer) {
	r := s.Engine()
	r.SetHTMLTemplate(templates)

	r.GET("/", h.list)
	r.GET("/stats", h.stats)
}

func (h *PageHandler) list(c *gin.Context) {
	req := listPapersRequest(c.Request)
	f, err := h.endpoint.Filter(c.Request.Context(), req)
	if err != nil {
		c.String(errors.Code(err), err.Error())
		return
	}

	c.HTML(http.StatusOK, "index.html", map[string]interface{}{
		"Page":     h.controller.View(f),
		"Q":        req.Q,
		"Sort":     string(f.Sort),
		"All":      view.All,
		"Statuses": paperlog.StatusCycle,
		"Sorts":    []view.Sort{view.SortCreated, view.SortYear, view.SortCitations, view.SortTitle},
	})
}

func (h *PageHandler) stats(c *gin.Context) {
	c.HTML(http.StatusOK, "stats.html", map[string]interface{}{
		"Overview": h.controller.Overview(h.now()),
	})
}
