package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/readnest/readnest/internal/feed"
	"github.com/readnest/readnest/internal/logging"
	"github.com/readnest/readnest/internal/models"
	"github.com/readnest/readnest/internal/server/auth"
	"github.com/readnest/readnest/internal/storage/jsonfile"
)

const testSecret = "test-secret"

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newTestServer wires the full API over file stores in a temp directory.
func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	dir := t.TempDir()
	log := testLogger()

	journals, err := jsonfile.NewJournalStore(dir, log)
	require.NoError(t, err)
	feeds, err := jsonfile.NewFeedStore(dir, log)
	require.NoError(t, err)
	articles, err := jsonfile.NewArticleStore(dir, log)
	require.NoError(t, err)
	documents, err := jsonfile.NewDocumentStore(dir, log)
	require.NoError(t, err)

	s := &Server{
		Journals:  journals,
		Feeds:     feeds,
		Articles:  articles,
		Documents: documents,
		FeedSvc:   feed.NewService(feed.NewFetcher(log, 5*time.Second, 0), feeds, articles, log),
		Statuses:  map[string]func() bool{"journals": func() bool { return true }},
		SecretKey: []byte(testSecret),
		Log:       log,
	}
	return s, s.NewRouter()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestJournalLifecycle(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/journals", map[string]string{
		"title":   "Garden notes",
		"content": "tree tree tree bird",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.JournalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, 4, created.WordCount)
	require.Equal(t, map[string]int{"tree": 3, "bird": 1}, created.Keywords)

	rec = doJSON(t, h, http.MethodGet, "/api/journals/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/api/journals/"+created.ID, map[string]string{
		"content": "completely different words now",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.JournalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, 4, updated.WordCount)
	require.NotContains(t, updated.Keywords, "tree")

	rec = doJSON(t, h, http.MethodGet, "/api/journals/search?q=different", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var found []models.JournalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found, 1)

	rec = doJSON(t, h, http.MethodDelete, "/api/journals/"+created.ID, nil, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/journals/"+created.ID, nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJournalSearchRequiresQuery(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/journals/search", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOwnerScoping(t *testing.T) {
	_, h := newTestServer(t)

	tokenA, err := auth.GenerateToken("alice", []byte(testSecret), time.Hour)
	require.NoError(t, err)
	tokenB, err := auth.GenerateToken("bob", []byte(testSecret), time.Hour)
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodPost, "/api/journals", map[string]string{"title": "mine"}, tokenA)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/journals", nil, tokenB)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.JournalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Empty(t, entries)

	rec = doJSON(t, h, http.MethodGet, "/api/journals", nil, tokenA)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
}

func TestInvalidTokenRejected(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/journals", nil, "not.a.jwt")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

const apiFeedFixture = `<?xml version="1.0"?><rss version="2.0"><channel>
<title>Wire</title>
<item><title>One</title><link>https://wire.example/1</link><description>first</description></item>
<item><title>Two</title><link>https://wire.example/2</link><description>second</description></item>
</channel></rss>`

func TestFeedSubscribeAndRefresh(t *testing.T) {
	_, h := newTestServer(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, apiFeedFixture)
	}))
	t.Cleanup(upstream.Close)

	rec := doJSON(t, h, http.MethodPost, "/api/feeds", map[string]string{"url": upstream.URL}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Subscription models.FeedSubscription `json:"subscription"`
		NewArticles  int                     `json:"new_articles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.NewArticles)
	require.Equal(t, "Wire", resp.Subscription.Title)

	// Same feed again: every URL is already known.
	rec = doJSON(t, h, http.MethodPost, "/api/feeds/"+resp.Subscription.ID+"/refresh", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Zero(t, resp.NewArticles)

	rec = doJSON(t, h, http.MethodGet, "/api/articles", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var articles []models.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &articles))
	require.Len(t, articles, 2)
}

func TestFeedSubscribeUpstreamFailure(t *testing.T) {
	_, h := newTestServer(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(upstream.Close)

	rec := doJSON(t, h, http.MethodPost, "/api/feeds", map[string]string{"url": upstream.URL}, "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestFeedSubscribeMissingURL(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/feeds", map[string]string{}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestWithoutSubscription(t *testing.T) {
	_, h := newTestServer(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, apiFeedFixture)
	}))
	t.Cleanup(upstream.Close)

	rec := doJSON(t, h, http.MethodPost, "/api/feeds/refresh", map[string]string{"url": upstream.URL}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		NewArticles int `json:"new_articles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.NewArticles)

	rec = doJSON(t, h, http.MethodGet, "/api/feeds", nil, "")
	var feeds []models.FeedSubscription
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feeds))
	require.Empty(t, feeds)
}

func TestDocumentStatusLifecycle(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/documents", map[string]any{
		"name":   "paper.pdf",
		"type":   "pdf",
		"size":   1234,
		"status": models.DocumentProcessing,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var doc models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, models.DocumentProcessing, doc.Status)

	rec = doJSON(t, h, http.MethodPatch, "/api/documents/"+doc.ID, map[string]string{
		"content": "extracted text",
		"status":  models.DocumentReady,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, models.DocumentReady, doc.Status)
	require.Equal(t, "extracted text", doc.Content)

	// Content is frozen once ready.
	rec = doJSON(t, h, http.MethodPatch, "/api/documents/"+doc.ID, map[string]string{
		"content": "changed",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "extracted text", doc.Content)
}

func TestDocumentRejectsUnknownStatus(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/documents", map[string]string{
		"name":   "x",
		"status": "bogus",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthzReportsStorageMode(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status  string            `json:"status"`
		Storage map[string]string `json:"storage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "file", resp.Storage["journals"])
}
