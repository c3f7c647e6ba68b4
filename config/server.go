package config

import (
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/aemkit/errors"
	"github.com/kbukum/aemkit/httpclient"
	"github.com/kbukum/aemkit/validation"
)

const (
	DefaultServerName = "localhost"
	DefaultPort       = 4502
	DefaultUser       = "admin"
	DefaultPassword   = "admin"
	DefaultTimeout    = 60 * time.Second
)

// Server describes how to reach one AEM instance. Values are built with
// Default or New and are not modified afterwards; the With options return
// changes through New.
type Server struct {
	ServerName string `yaml:"name" mapstructure:"name" validate:"required,hostname_rfc1123"`
	Port       int    `yaml:"port" mapstructure:"port" validate:"min=1,max=65535"`
	User       string `yaml:"user" mapstructure:"user" validate:"required_without_all=AccessToken LoginToken"`
	Password   string `yaml:"password" mapstructure:"password"`
	UseSSL     bool   `yaml:"use_ssl" mapstructure:"use_ssl"`

	// AccessToken switches authentication from basic to bearer. JWT tokens
	// are checked for expiry by Validate.
	AccessToken string `yaml:"access_token" mapstructure:"access_token"`
	// LoginToken reuses an existing login-token cookie. AccessToken wins
	// when both are set.
	LoginToken string `yaml:"login_token" mapstructure:"login_token"`

	Timeout time.Duration         `yaml:"timeout" mapstructure:"timeout"`
	TLS     *httpclient.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// CorrelationIDs sends an X-Correlation-ID header with every request.
	CorrelationIDs bool `yaml:"correlation_ids" mapstructure:"correlation_ids"`
}

// Option adjusts a Server under construction.
type Option func(*Server)

// Default returns the settings of a local author instance: localhost:4502,
// admin/admin, no SSL.
func Default() Server {
	return Server{
		ServerName:     DefaultServerName,
		Port:           DefaultPort,
		User:           DefaultUser,
		Password:       DefaultPassword,
		Timeout:        DefaultTimeout,
		CorrelationIDs: true,
	}
}

// New returns Default with opts applied in order.
func New(opts ...Option) Server {
	s := Default()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// With returns a copy of s with opts applied.
func (s Server) With(opts ...Option) Server {
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func WithServerName(name string) Option { return func(s *Server) { s.ServerName = name } }

func WithPort(port int) Option { return func(s *Server) { s.Port = port } }

func WithUser(user string) Option { return func(s *Server) { s.User = user } }

func WithPassword(password string) Option { return func(s *Server) { s.Password = password } }

func WithSSL(enabled bool) Option { return func(s *Server) { s.UseSSL = enabled } }

// WithAccessToken authenticates with a bearer token instead of user and password.
func WithAccessToken(token string) Option { return func(s *Server) { s.AccessToken = token } }

func WithLoginToken(token string) Option { return func(s *Server) { s.LoginToken = token } }

func WithTimeout(d time.Duration) Option { return func(s *Server) { s.Timeout = d } }

// WithTLS sets the TLS settings used when SSL is enabled.
func WithTLS(tls *httpclient.TLSConfig) Option { return func(s *Server) { s.TLS = tls } }

func WithCorrelationIDs(enabled bool) Option {
	return func(s *Server) { s.CorrelationIDs = enabled }
}

// URL returns scheme://host[:port]. The port is left out when it is the
// scheme's default.
func (s Server) URL() string {
	scheme, defaultPort := "http", 80
	if s.UseSSL {
		scheme, defaultPort = "https", 443
	}
	host := s.ServerName
	if s.Port != defaultPort {
		host = net.JoinHostPort(s.ServerName, strconv.Itoa(s.Port))
	}
	return (&url.URL{Scheme: scheme, Host: host}).String()
}

// Validate checks the struct tags and, for JWT access tokens, that the
// token parses and has not expired.
func (s Server) Validate() error {
	if err := validation.Validate(s); err != nil {
		return err
	}
	if err := s.TLS.Validate(); err != nil {
		return errors.Validation(err.Error()).WithCause(err)
	}
	return checkToken(s.AccessToken, time.Now())
}

// ClientConfig returns the transport configuration for this server.
func (s Server) ClientConfig() httpclient.Config {
	cfg := httpclient.Config{
		Name:                 s.ServerName,
		BaseURL:              s.URL(),
		Timeout:              s.Timeout,
		DisableCorrelationID: !s.CorrelationIDs,
	}
	if s.UseSSL {
		cfg.TLS = s.TLS
	}
	switch {
	case s.AccessToken != "":
		cfg.Auth = httpclient.BearerAuth(s.AccessToken)
	case s.LoginToken != "":
		cfg.Auth = httpclient.LoginTokenAuth(s.LoginToken)
	default:
		cfg.Auth = httpclient.BasicAuth(s.User, s.Password)
	}
	return cfg
}

// checkToken inspects the claims of a JWT without verifying its signature;
// only the server can do that. An empty token passes.
func checkToken(token string, now time.Time) error {
	if token == "" {
		return nil
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return errors.InvalidToken(err)
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return errors.TokenExpired().WithDetail("expired_at", claims.ExpiresAt.Time)
	}
	return nil
}
