package aemtest

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/aemkit/component"
	"github.com/kbukum/aemkit/config"
	"github.com/kbukum/aemkit/httpclient"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const recordedKey = "aemtest.request"

// Default credentials of the fake server.
const (
	DefaultUser     = "admin"
	DefaultPassword = "admin"
)

// Server is a fake AEM server. It implements component.Component.
type Server struct {
	mu       sync.Mutex
	engine   *gin.Engine
	ts       *httptest.Server
	user     string
	password string
	token    string
	stubs    []*Stub
	requests []Request
}

var _ component.Component = (*Server)(nil)

// Option configures a Server.
type Option func(*Server)

// WithCredentials sets the accepted basic auth credentials.
func WithCredentials(user, password string) Option {
	return func(s *Server) {
		s.user = user
		s.password = password
	}
}

// WithToken additionally accepts "Authorization: Bearer <token>" and a
// login-token cookie carrying token.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// NewServer creates a server that is not listening yet.
func NewServer(opts ...Option) *Server {
	s := &Server{user: DefaultUser, password: DefaultPassword}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.recordRequest(), s.authenticate())
	s.engine.NoRoute(s.dispatch)
	return s
}

// Start creates and starts a server that stops when the test ends.
func Start(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := NewServer(opts...)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("aemtest: start: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

// On registers a stub for method and path. Later stubs win over earlier
// ones that match the same request.
func (s *Server) On(method, path string) *Stub {
	stub := &Stub{method: method, path: path, query: map[string]string{}, reply: HTML(http.StatusNotFound, "<html>no reply configured</html>")}
	s.mu.Lock()
	s.stubs = append(s.stubs, stub)
	s.mu.Unlock()
	return stub
}

// Requests returns a copy of every recorded request.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// BaseURL returns the server URL, or "" before Start.
func (s *Server) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ts == nil {
		return ""
	}
	return s.ts.URL
}

// ClientConfig returns a transport config pointing at the server with its
// credentials.
func (s *Server) ClientConfig() httpclient.Config {
	return httpclient.Config{
		Name:    "aemtest",
		BaseURL: s.BaseURL(),
		Timeout: 5 * time.Second,
		Auth:    httpclient.BasicAuth(s.user, s.password),
	}
}

// ServerConfig returns the server as a config.Server.
func (s *Server) ServerConfig() config.Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	host, port := "localhost", 0
	if s.ts != nil {
		if h, p, err := net.SplitHostPort(s.ts.Listener.Addr().String()); err == nil {
			host = h
			port, _ = strconv.Atoi(p)
		}
	}
	return config.New(
		config.WithServerName(host),
		config.WithPort(port),
		config.WithUser(s.user),
		config.WithPassword(s.password),
		config.WithTimeout(5*time.Second),
	)
}

// --- component.Component ---

func (s *Server) Name() string { return "aemtest" }

func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ts != nil {
		return fmt.Errorf("aemtest: server already started")
	}
	s.ts = httptest.NewServer(s.engine)
	return nil
}

func (s *Server) Stop(_ context.Context) error {
	s.mu.Lock()
	ts := s.ts
	s.ts = nil
	s.mu.Unlock()
	if ts != nil {
		ts.Close()
	}
	return nil
}

func (s *Server) Health(_ context.Context) component.Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ts == nil {
		return component.Health{Name: s.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: s.Name(), Status: component.StatusHealthy}
}

// --- handlers ---

func (s *Server) recordRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := record(c.Request)
		s.mu.Lock()
		s.requests = append(s.requests, rec)
		s.mu.Unlock()
		c.Set(recordedKey, rec)
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		c.Next()
	}
}

func (s *Server) authenticate() gin.HandlerFunc {
	basic := gin.BasicAuth(gin.Accounts{s.user: s.password})
	return func(c *gin.Context) {
		if s.token != "" {
			if c.GetHeader("Authorization") == "Bearer "+s.token {
				return
			}
			if cookie, err := c.Cookie(httpclient.LoginTokenCookie); err == nil && cookie == s.token {
				return
			}
		}
		basic(c)
	}
}

func (s *Server) dispatch(c *gin.Context) {
	rec, _ := c.Get(recordedKey)
	recorded, _ := rec.(Request)
	reply, ok := s.match(c.Request, recorded)
	if !ok {
		reply = HTML(http.StatusNotFound, "<html><body>No resource found</body></html>")
	}
	if reply.Status == 0 {
		reply.Status = http.StatusOK
	}
	if len(reply.Body) == 0 {
		if reply.ContentType != "" {
			c.Header("Content-Type", reply.ContentType)
		}
		c.Status(reply.Status)
		return
	}
	c.Data(reply.Status, reply.ContentType, reply.Body)
}

func (s *Server) match(req *http.Request, rec Request) (Reply, bool) {
	var found *Stub
	s.mu.Lock()
	for i := len(s.stubs) - 1; i >= 0; i-- {
		if s.stubs[i].matches(req) {
			found = s.stubs[i]
			break
		}
	}
	s.mu.Unlock()
	if found == nil {
		return Reply{}, false
	}
	return found.respond(rec), true
}
