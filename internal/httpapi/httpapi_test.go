package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvello/mpdify-go/internal/mpdproto"
)

type pingHandler struct{}

func (pingHandler) Name() string { return "ping" }
func (pingHandler) Execute(ctx context.Context, cmd mpdproto.Command) (mpdproto.HandlerOutput, error) {
	if cmd.Kind != mpdproto.CmdPing {
		return mpdproto.HandlerOutput{}, mpdproto.ErrUnsupported
	}
	return mpdproto.Ok(), nil
}

type fakeAuth struct{ authURL string }

func (f *fakeAuth) AuthURL() string { return f.authURL }
func (f *fakeAuth) Callback(ctx context.Context, state, code string) error { return nil }

func newTestServer() *Server {
	dispatcher := mpdproto.NewDispatcher(mpdproto.NewMailbox(pingHandler{}, 4))
	return New(dispatcher, &fakeAuth{authURL: "https://accounts.spotify.com/authorize?x"}, nil)
}

func TestHandleCommandSuccess(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/command/ping", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleCommandUnknown(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/command/bogus", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAuthRedirectsWithoutCode(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://accounts.spotify.com/authorize?x", rec.Header().Get("Location"))
}

func TestHandleAuthCompletesCallback(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/auth?code=abc&state=xyz", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
