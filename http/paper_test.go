package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/bleve"
	"github.com/bobinette/paperlog/endpoints"
	"github.com/bobinette/paperlog/inmem"
	"github.com/bobinette/paperlog/jwt"
	"github.com/bobinette/paperlog/library"
	"github.com/bobinette/paperlog/log"
	"github.com/bobinette/paperlog/lookup"
	"github.com/bobinette/paperlog/services"
)

var jwtKey = []byte("test-key")

type fakeLookup map[string]*lookup.Metadata

func (f fakeLookup) Lookup(ctx context.Context, q string) *lookup.Metadata {
	return f[q]
}

type fixture struct {
	server     *httptest.Server
	controller *library.Controller
	token      string
}

func createFixture(t *testing.T) *fixture {
	store := inmem.NewPaperStore()

	index := &bleve.PaperIndex{}
	require.NoError(t, index.OpenMemory())

	logger := log.Discard()
	service := services.NewPaperService(store, index, fakeLookup{
		"1706.03762": {Title: "Attention Is All You Need"},
	}, logger)
	controller := library.NewController(store, logger)
	ep := endpoints.NewPaperEndpoint(service, controller)

	srv := NewServer("test", logger)
	RegisterPaperEndpoints(srv, ep, jwtKey)
	NewStreamHandler(ep, controller, logger).Register(srv)
	NewPageHandler(ep, controller).Register(srv)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		controller.Run(ctx)
	}()

	token, err := jwt.NewEncodeDecoder(jwtKey).Encode("tester", time.Hour)
	require.NoError(t, err)

	server := httptest.NewServer(srv)
	t.Cleanup(func() {
		server.Close()
		cancel()
		wg.Wait()
		index.Close()
	})

	return &fixture{server: server, controller: controller, token: token}
}

func (f *fixture) do(t *testing.T, method, path, body string, authenticated bool) (int, map[string]interface{}) {
	t.Helper()

	req, err := http.NewRequest(method, f.server.URL+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	if res.StatusCode == http.StatusNoContent {
		return res.StatusCode, nil
	}

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&decoded))
	return res.StatusCode, decoded
}

func (f *fixture) create(t *testing.T, body string) string {
	t.Helper()

	code, res := f.do(t, "POST", "/api/papers", body, true)
	require.Equal(t, http.StatusOK, code, res)
	return res["data"].(map[string]interface{})["id"].(string)
}

// waitForTotal waits until the controller holds n papers.
func (f *fixture) waitForTotal(t *testing.T, n int) {
	t.Helper()

	require.Eventually(t, func() bool {
		s := f.controller.State()
		return !s.InitialLoad && len(s.Papers) == n
	}, 5*time.Second, 5*time.Millisecond)
}

func TestPing(t *testing.T) {
	f := createFixture(t)

	code, res := f.do(t, "GET", "/ping", "", false)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", res["data"])
}

func TestCreate_Unauthorized(t *testing.T) {
	f := createFixture(t)

	code, res := f.do(t, "POST", "/api/papers", `{"title": "Paper"}`, false)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.NotEmpty(t, res["error"])
}

func TestCreate_Invalid(t *testing.T) {
	f := createFixture(t)

	tts := map[string]string{
		"blank title": `{"title": "  "}`,
		"not json":    `{"title":`,
	}
	for name, body := range tts {
		code, res := f.do(t, "POST", "/api/papers", body, true)
		assert.Equal(t, http.StatusBadRequest, code, name)
		assert.NotEmpty(t, res["error"], name)
	}
}

func TestListPapers(t *testing.T) {
	f := createFixture(t)

	f.create(t, `{"title": "Attention Is All You Need", "category": "NLP", "authors": [{"name": "Vaswani"}]}`)
	f.create(t, `{"title": "Deep Residual Learning", "category": "CV"}`)
	f.create(t, `{"title": "Untitled draft"}`)
	f.waitForTotal(t, 3)

	tts := map[string]struct {
		query      string
		categories []string
	}{
		"all":         {query: "", categories: []string{"CV", "NLP", paperlog.Uncategorized}},
		"category":    {query: "?category=NLP", categories: []string{"NLP"}},
		"search":      {query: "?q=resid", categories: []string{"CV"}},
		"search none": {query: "?q=nothing", categories: []string{}},
		"status":      {query: "?status=read", categories: []string{}},
	}

	for name, tt := range tts {
		code, res := f.do(t, "GET", "/api/papers"+tt.query, "", false)
		require.Equal(t, http.StatusOK, code, name)

		page := res["data"].(map[string]interface{})
		categories := make([]string, 0)
		for _, g := range page["groups"].([]interface{}) {
			categories = append(categories, g.(map[string]interface{})["category"].(string))
		}
		assert.Equal(t, tt.categories, categories, name)
	}

	code, res := f.do(t, "GET", "/api/papers?status=read", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, res["data"].(map[string]interface{})["showEmpty"])

	code, _ = f.do(t, "GET", "/api/papers?status=done", "", false)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, "GET", "/api/papers?sort=random", "", false)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestEditPaper(t *testing.T) {
	f := createFixture(t)
	id := f.create(t, `{"title": "Paper"}`)

	code, res := f.do(t, "PUT", "/api/papers/"+id, `{"title": "Renamed", "year": 2017}`, true)
	require.Equal(t, http.StatusOK, code, res)
	paper := res["data"].(map[string]interface{})
	assert.Equal(t, "Renamed", paper["title"])
	assert.Equal(t, float64(2017), paper["year"])

	tts := map[string]string{
		"status":      `{"title": "Renamed", "status": "read"}`,
		"legacy read": `{"title": "Renamed", "read": true}`,
		"read date":   `{"title": "Renamed", "readAt": "2024-01-01T00:00:00Z"}`,
		"other id":    `{"id": "other", "title": "Renamed"}`,
		"no title":    `{"title": ""}`,
	}
	for name, body := range tts {
		code, _ := f.do(t, "PUT", "/api/papers/"+id, body, true)
		assert.Equal(t, http.StatusBadRequest, code, name)
	}

	code, _ = f.do(t, "PUT", "/api/papers/unknown", `{"title": "Renamed"}`, true)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSaveNote(t *testing.T) {
	f := createFixture(t)
	id := f.create(t, `{"title": "Paper"}`)

	code, res := f.do(t, "PUT", "/api/papers/"+id+"/note", `{"note": "# Summary"}`, true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "# Summary", res["data"].(map[string]interface{})["note"])

	code, _ = f.do(t, "PUT", "/api/papers/"+id+"/note", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAdvanceStatus(t *testing.T) {
	f := createFixture(t)
	id := f.create(t, `{"title": "Paper"}`)

	for _, expected := range []string{"to-read", "skimmed", "read"} {
		code, res := f.do(t, "POST", "/api/papers/"+id+"/status", "", true)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, expected, res["data"].(map[string]interface{})["status"])
	}

	code, res := f.do(t, "GET", "/api/papers/"+id, "", false)
	require.Equal(t, http.StatusOK, code)
	assert.NotNil(t, res["data"].(map[string]interface{})["readAt"])

	code, _ = f.do(t, "POST", "/api/papers/"+id+"/status", "", true)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = f.do(t, "POST", "/api/papers/"+id+"/status?confirm=maybe", "", true)
	assert.Equal(t, http.StatusBadRequest, code)

	code, res = f.do(t, "POST", "/api/papers/"+id+"/status?confirm=true", "", true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "unread", res["data"].(map[string]interface{})["status"])

	code, _ = f.do(t, "POST", "/api/papers/"+id+"/status", "", false)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestDeletePaper(t *testing.T) {
	f := createFixture(t)
	id := f.create(t, `{"title": "Paper"}`)

	code, _ := f.do(t, "DELETE", "/api/papers/"+id, "", true)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = f.do(t, "GET", "/api/papers/"+id, "", false)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, "DELETE", "/api/papers/"+id, "", true)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStats(t *testing.T) {
	f := createFixture(t)
	f.create(t, `{"title": "Paper", "category": "ML"}`)
	f.waitForTotal(t, 1)

	code, res := f.do(t, "GET", "/api/stats", "", false)
	require.Equal(t, http.StatusOK, code)

	overview := res["data"].(map[string]interface{})
	assert.Equal(t, float64(1), overview["total"])
	assert.Equal(t, float64(0), overview["maxStreak"])
	assert.Equal(t, "N/A", overview["topCategory"].(map[string]interface{})["name"])
}

func TestLookup(t *testing.T) {
	f := createFixture(t)

	code, res := f.do(t, "GET", "/api/lookup?q=1706.03762", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Attention Is All You Need", res["data"].(map[string]interface{})["title"])

	code, res = f.do(t, "GET", "/api/lookup?q=unknown", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, res["data"])

	code, _ = f.do(t, "GET", "/api/lookup", "", false)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestReindex(t *testing.T) {
	f := createFixture(t)
	f.create(t, `{"title": "Paper"}`)

	code, res := f.do(t, "POST", "/api/index", "", true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), res["data"].(map[string]interface{})["indexed"])
}

func TestNoRoute(t *testing.T) {
	f := createFixture(t)

	code, res := f.do(t, "GET", "/api/unknown", "", false)
	assert.Equal(t, http.StatusNotFound, code)
	assert.NotEmpty(t, res["error"])
}

func TestIndexPage(t *testing.T) {
	f := createFixture(t)
	id := f.create(t, `{"title": "Attention", "category": "NLP"}`)
	f.create(t, `{"title": "ResNet", "category": "CV"}`)
	f.do(t, "PUT", "/api/papers/"+id+"/note", `{"note": "**bold** and $x^2$ <script>alert(1)</script>"}`, true)

	require.Eventually(t, func() bool {
		s := f.controller.State()
		return len(s.Papers) == 2 && (s.Papers[0].Note != "" || s.Papers[1].Note != "")
	}, 5*time.Second, 5*time.Millisecond)

	res, err := http.Get(f.server.URL + "/?category=NLP")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	doc, err := goquery.NewDocumentFromReader(res.Body)
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Find("section.group").Length())
	assert.Equal(t, "NLP", doc.Find("section.group").AttrOr("data-category", ""))

	note := doc.Find("article.paper .note")
	assert.Equal(t, "bold", note.Find("strong").Text())
	assert.Equal(t, 1, note.Find("span.math.inline").Length())
	assert.Equal(t, 0, doc.Find("article.paper script").Length())

	assert.Equal(t, "NLP", doc.Find("select[name=category] option[selected]").AttrOr("value", ""))

	bad, err := http.Get(f.server.URL + "/?status=done")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestStatsPage(t *testing.T) {
	f := createFixture(t)
	f.create(t, `{"title": "Paper"}`)
	f.waitForTotal(t, 1)

	res, err := http.Get(f.server.URL + "/stats")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	doc, err := goquery.NewDocumentFromReader(res.Body)
	require.NoError(t, err)

	assert.Equal(t, "1 papers", doc.Find("#total").Text())
	assert.Equal(t, "0 days max streak", doc.Find("#streak").Text())
	assert.Equal(t, 12, doc.Find("#monthly li").Length())
	assert.True(t, doc.Find("#calendar .day").Length() >= 365)
}

func TestStream(t *testing.T) {
	f := createFixture(t)
	f.create(t, `{"title": "First", "category": "ML"}`)
	f.waitForTotal(t, 1)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/stream?category=ML"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	total := func() float64 {
		var msg map[string]interface{}
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		require.NoError(t, conn.ReadJSON(&msg))
		return msg["data"].(map[string]interface{})["total"].(float64)
	}
	assert.Equal(t, float64(1), total())

	f.create(t, `{"title": "Second", "category": "ML"}`)
	f.create(t, `{"title": "Other", "category": "CV"}`)

	// Intermediate states may be skipped, the last one is always sent
	n := total()
	for n != 2 {
		n = total()
	}
	assert.Equal(t, float64(2), n)
}

func TestStream_InvalidFilter(t *testing.T) {
	f := createFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/stream?status=done"
	_, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
