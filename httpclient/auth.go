package httpclient

import (
	"net/http"
)

// LoginTokenCookie is the cookie AEM issues after a form login.
const LoginTokenCookie = "login-token"

// AuthType identifies how requests authenticate against AEM.
type AuthType string

const (
	AuthNone       AuthType = ""
	AuthBasic      AuthType = "basic"
	AuthBearer     AuthType = "bearer"
	AuthLoginToken AuthType = "login-token"
)

// AuthConfig holds the credentials sent with every request.
type AuthConfig struct {
	Type     AuthType
	Username string
	Password string
	// Token is the bearer token or the login-token cookie value.
	Token string
}

// BasicAuth authenticates with user and password, the AEM default.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// BearerAuth authenticates with an access token, as issued for AEM
// technical accounts.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// LoginTokenAuth authenticates with the value of an existing login-token
// cookie.
func LoginTokenAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthLoginToken, Token: token}
}

// String describes the credentials without revealing secrets.
func (a *AuthConfig) String() string {
	if a == nil || a.Type == AuthNone {
		return "anonymous"
	}
	if a.Type == AuthBasic {
		return "basic " + a.Username
	}
	return string(a.Type)
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	switch a.Type {
	case AuthBasic:
		req.SetBasicAuth(a.Username, a.Password)
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthLoginToken:
		req.AddCookie(&http.Cookie{Name: LoginTokenCookie, Value: a.Token})
	}
}
