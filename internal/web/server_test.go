package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/unpack/internal/config"
	"github.com/oakwood-commons/unpack/internal/jsonvalue"
	"github.com/oakwood-commons/unpack/pkg/core"
	"github.com/oakwood-commons/unpack/pkg/logger"
)

func newTestServer(t *testing.T, lgr logr.Logger) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg, err := config.Default()
	require.NoError(t, err)
	engine, err := core.New()
	require.NoError(t, err)
	srv, err := New(cfg, engine, lgr)
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	r := newTestServer(t, logr.Discard()).Router()
	rec := do(t, r, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<div id="unpack-parsed-input">`)
	assert.Contains(t, body, `<div id="unpack-rough-schema">`)
	assert.Contains(t, body, `id="unpack-json-input"`)
	assert.Contains(t, body, `class="json-path-nested-struct-integers-item"`)
	assert.Contains(t, body, `<h2 id="what-is-this">`)
	assert.Contains(t, body, "<strong>rough schema</strong>")
	assert.NotContains(t, body, ` highlighted"`)
}

func TestIndexHighlight(t *testing.T) {
	r := newTestServer(t, logr.Discard()).Router()
	rec := do(t, r, http.MethodGet, "/?highlight=json-path-nested-struct-integers-item", "")
	require.Equal(t, http.StatusOK, rec.Code)
	// three integers in the pretty view, one List item in the schema view
	assert.Equal(t, 4, strings.Count(rec.Body.String(), `class="json-path-nested-struct-integers-item highlighted"`))
}

func TestRenderOK(t *testing.T) {
	r := newTestServer(t, logr.Discard()).Router()
	rec := do(t, r, http.MethodPost, "/api/render", `{"a":[1,2],"b":{"a":true}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RenderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, []string{"a"}, resp.Renames)
	assert.Contains(t, resp.Schema, `<span class="key">a</span>=<span class="renamed-key">b_a</span>`)
	assert.Contains(t, resp.Pretty, `<span class="value boolean">true</span>`)
	assert.NotContains(t, resp.Pretty, PrettyContainerID, "fragments exclude the container")
}

func TestRenderNoRenames(t *testing.T) {
	r := newTestServer(t, logr.Discard()).Router()
	rec := do(t, r, http.MethodPost, "/api/render", `[]`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"renames":[]`)
}

func TestRenderInvalid(t *testing.T) {
	r := newTestServer(t, logr.Discard()).Router()
	rec := do(t, r, http.MethodPost, "/api/render", "{\"a\": 1,}")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, 1, resp.Error.Line)
	assert.Positive(t, resp.Error.Column)
	assert.NotEmpty(t, resp.Error.Message)
	require.NotEmpty(t, resp.Repaired)
	_, err := jsonvalue.ParseString(resp.Repaired)
	assert.NoError(t, err)
}

func TestRenderEmpty(t *testing.T) {
	r := newTestServer(t, logr.Discard()).Router()
	rec := do(t, r, http.MethodPost, "/api/render", "  ")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Repaired)
}

func TestRenderExpression(t *testing.T) {
	r := newTestServer(t, logr.Discard()).Router()
	rec := do(t, r, http.MethodPost, "/api/render?expr=_.b", `{"a":[1,2],"b":{"a":true}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp RenderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Schema, `class="json-path-a"`)
	assert.Empty(t, resp.Renames)

	rec = do(t, r, http.MethodPost, "/api/render?expr=_.(", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRenderTooLarge(t *testing.T) {
	r := newTestServer(t, logr.Discard()).Router()
	big := `"` + strings.Repeat("x", MaxBodyBytes) + `"`
	rec := do(t, r, http.MethodPost, "/api/render", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHealthAndStatic(t *testing.T) {
	r := newTestServer(t, logr.Discard()).Router()
	rec := do(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = do(t, r, http.MethodGet, "/static/app.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scrollIntoView")

	rec = do(t, r, http.MethodGet, "/static/style.css", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	r := newTestServer(t, logger.New(&buf, 0)).Router()

	rec := do(t, r, http.MethodGet, "/healthz", "")
	id := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), fmt.Sprintf(`"request_id":"%s"`, id))
	assert.Contains(t, buf.String(), `"path":"/healthz"`)
	assert.Contains(t, buf.String(), `"status":200`)

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, incoming, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := newTestServer(t, logr.Discard())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
