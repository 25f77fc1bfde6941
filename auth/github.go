// Package auth implements the GitHub OAuth code exchange. Without a
// configured OAuth app a deterministic stub stands in for GitHub.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/yaguaretech/builder/config"
	"github.com/yaguaretech/builder/log"
	"github.com/yaguaretech/builder/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// Scopes requested from GitHub
var Scopes = []string{"repo", "workflow", "read:user"}

// ErrExchange wraps failures of the code-for-token exchange or the user lookup
var ErrExchange = errors.New("github exchange failed")

// Exchanger turns an authorization code into an access token and the user
// it belongs to
type Exchanger interface {
	AuthorizeURL(state, redirectURI string) string
	Exchange(ctx context.Context, code, redirectURI string) (string, models.GitHubUser, error)
	Name() string
}

// New returns the real exchanger when an OAuth app is configured, else the stub
func New(cfg *config.Config) Exchanger {
	if cfg.UseRealOAuth() {
		log.Info().Str("clientId", cfg.GitHubClientID).Msg("GitHub OAuth configured")
		return NewOAuthExchanger(OAuthConfig{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			APIBaseURL:   cfg.GitHubAPIBaseURL,
		})
	}
	log.Warn().Msg("GITHUB_CLIENT_SECRET not configured, using stub GitHub exchange")
	return StubExchanger{}
}

// StubExchanger simulates GitHub: authorization loops straight back to the
// callback and every code yields a token derived from it plus a demo user
type StubExchanger struct{}

func (StubExchanger) Name() string { return "stub" }

func (StubExchanger) AuthorizeURL(state, redirectURI string) string {
	q := url.Values{}
	q.Set("code", "stub_"+state)
	q.Set("state", state)
	return redirectURI + "?" + q.Encode()
}

func (StubExchanger) Exchange(_ context.Context, code, _ string) (string, models.GitHubUser, error) {
	if code == "" {
		return "", models.GitHubUser{}, fmt.Errorf("%w: empty code", ErrExchange)
	}
	sum := sha256.Sum256([]byte(code))
	name := "Usuario Demo"
	return "gho_stub_" + hex.EncodeToString(sum[:])[:16], models.GitHubUser{
		ID:        1,
		Login:     "demo-user",
		AvatarURL: "https://avatars.githubusercontent.com/u/1?v=4",
		Name:      &name,
	}, nil
}

// OAuthConfig holds the GitHub OAuth app settings
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	APIBaseURL   string
	// Endpoint overrides github.Endpoint, for GitHub Enterprise
	Endpoint *oauth2.Endpoint
}

// OAuthExchanger performs the real exchange against GitHub
type OAuthExchanger struct {
	oauth2Config oauth2.Config
	apiBaseURL   string
}

// NewOAuthExchanger creates an exchanger for a GitHub OAuth app
func NewOAuthExchanger(cfg OAuthConfig) *OAuthExchanger {
	endpoint := github.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	apiBase := strings.TrimRight(cfg.APIBaseURL, "/")
	if apiBase == "" {
		apiBase = "https://api.github.com"
	}
	return &OAuthExchanger{
		oauth2Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       Scopes,
		},
		apiBaseURL: apiBase,
	}
}

func (o *OAuthExchanger) Name() string { return "github" }

// withRedirect returns a copy of the config bound to redirectURI
func (o *OAuthExchanger) withRedirect(redirectURI string) *oauth2.Config {
	c := o.oauth2Config
	c.RedirectURL = redirectURI
	return &c
}

func (o *OAuthExchanger) AuthorizeURL(state, redirectURI string) string {
	return o.withRedirect(redirectURI).AuthCodeURL(state)
}

func (o *OAuthExchanger) Exchange(ctx context.Context, code, redirectURI string) (string, models.GitHubUser, error) {
	cfg := o.withRedirect(redirectURI)

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return "", models.GitHubUser{}, fmt.Errorf("%w: token: %w", ErrExchange, err)
	}

	user, err := o.fetchUser(ctx, cfg.Client(ctx, token))
	if err != nil {
		return "", models.GitHubUser{}, err
	}
	return token.AccessToken, user, nil
}

func (o *OAuthExchanger) fetchUser(ctx context.Context, client *http.Client) (models.GitHubUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.apiBaseURL+"/user", nil)
	if err != nil {
		return models.GitHubUser{}, fmt.Errorf("%w: %w", ErrExchange, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return models.GitHubUser{}, fmt.Errorf("%w: user: %w", ErrExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.GitHubUser{}, fmt.Errorf("%w: user lookup returned %d", ErrExchange, resp.StatusCode)
	}

	var user models.GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return models.GitHubUser{}, fmt.Errorf("%w: decode user: %w", ErrExchange, err)
	}
	return user, nil
}
