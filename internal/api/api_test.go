package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrel-ai/attendant/internal/extension"
	"github.com/petrel-ai/attendant/internal/ipc"
)

type statusExt struct{}

func (s *statusExt) Platforms() []string { return []string{"chat"} }
func (s *statusExt) Commands() []string  { return []string{"chat_get_status"} }
func (s *statusExt) Handle(ctx context.Context, p extension.Payload) error {
	p.Reply(extension.Response{Body: "OK"})
	return nil
}

type echoExt struct{}

func (e *echoExt) Platforms() []string { return nil }
func (e *echoExt) Commands() []string  { return []string{"echo"} }
func (e *echoExt) Handle(ctx context.Context, p extension.Payload) error {
	p.Reply(extension.Response{Body: p.Data["value"]})
	return nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	reg := extension.NewRegistry()
	reg.RegisterIPCCommand(&statusExt{})
	reg.RegisterIPCCommand(&echoExt{})

	bus := ipc.NewBus(reg)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Run(ctx)

	return NewServer("127.0.0.1", 0, bus)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func TestHealth(t *testing.T) {
	rec, body := doJSON(t, newTestServer(t).Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestStatus_KnownPlatform(t *testing.T) {
	rec, body := doJSON(t, newTestServer(t).Handler(), http.MethodGet, "/chat", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", body["status"])
}

func TestStatus_UnknownPlatform(t *testing.T) {
	rec, body := doJSON(t, newTestServer(t).Handler(), http.MethodGet, "/smoke", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown platform", body["error"])
}

func TestWebhook_RoutesCommand(t *testing.T) {
	rec, body := doJSON(t, newTestServer(t).Handler(), http.MethodPut, "/chat/webhook",
		`{"command":"echo","value":"ping"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ping", body["response"])
}

func TestWebhook_MissingCommand(t *testing.T) {
	rec, body := doJSON(t, newTestServer(t).Handler(), http.MethodPut, "/chat/webhook", `{"value":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "command is required", body["error"])
}

func TestWebhook_InvalidJSON(t *testing.T) {
	rec, _ := doJSON(t, newTestServer(t).Handler(), http.MethodPut, "/chat/webhook", "{nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhook_UnknownCommand(t *testing.T) {
	rec, body := doJSON(t, newTestServer(t).Handler(), http.MethodPut, "/chat/webhook",
		`{"command":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown command", body["error"])
}

func TestRequestID_Propagated(t *testing.T) {
	h := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
