// Package httpapi exposes the parallel HTTP surface: a /command endpoint
// that dispatches an MPD-style command through the same handler chain the
// TCP listener uses, and /auth for the Spotify OAuth2 redirect/callback.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xvello/mpdify-go/internal/mpdproto"
)

// Authenticator completes the OAuth2 flow for the /auth callback.
type Authenticator interface {
	AuthURL() string
	Callback(ctx context.Context, state, code string) error
}

// Server wires the HTTP surface onto a gin engine.
type Server struct {
	engine     *gin.Engine
	dispatcher *mpdproto.Dispatcher
	auth       Authenticator
	log        *logrus.Entry
}

// New builds the HTTP server. Call Engine().Run(addr) or serve it yourself.
func New(dispatcher *mpdproto.Dispatcher, auth Authenticator, log *logrus.Entry) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{engine: gin.New(), dispatcher: dispatcher, auth: auth, log: log}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) routes() {
	s.engine.POST("/command/:line", s.handleCommand)
	s.engine.GET("/auth", s.handleAuth)
}

func (s *Server) handleCommand(c *gin.Context) {
	line := c.Param("line")
	cmd, err := mpdproto.Parse(line)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	out, err := s.dispatcher.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		s.handleError(c, err)
		return
	}

	if len(out.Records) == 0 && out.Kind != mpdproto.OutputData {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, recordsToJSON(out.Records))
}

func (s *Server) handleError(c *gin.Context, err error) {
	var authErr *mpdproto.AuthNeededError
	var inputErr *mpdproto.InputError
	var invalidArgErr *mpdproto.InvalidArgument
	switch {
	case errors.As(err, &authErr):
		c.Redirect(http.StatusFound, authErr.URL)
	case errors.As(err, &inputErr), errors.As(err, &invalidArgErr):
		c.Status(http.StatusBadRequest)
	default:
		if s.log != nil {
			s.log.WithError(err).Warn("command dispatch failed")
		}
		c.Status(http.StatusInternalServerError)
	}
}

// handleAuth serves both steps of the OAuth2 dance: with no query
// parameters it redirects to Spotify's authorization URL; with "code" and
// "state" it completes the exchange.
func (s *Server) handleAuth(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" {
		c.Redirect(http.StatusFound, s.auth.AuthURL())
		return
	}

	if err := s.auth.Callback(c.Request.Context(), state, code); err != nil {
		if s.log != nil {
			s.log.WithError(err).Warn("oauth callback failed")
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}

func recordsToJSON(records []mpdproto.Record) []map[string]string {
	out := make([]map[string]string, 0, len(records))
	for _, r := range records {
		m := make(map[string]string, len(r))
		for _, f := range r {
			m[f.Key] = f.Value
		}
		out = append(out, m)
	}
	return out
}
