package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	tasksapi "google.golang.org/api/tasks/v1"

	"github.com/teemow/workspace-tasks/internal/instrumentation"
	"github.com/teemow/workspace-tasks/internal/logging"
	"github.com/teemow/workspace-tasks/internal/tasks"
)

// Config describes where OAuth client credentials and tokens come from.
type Config struct {
	// CredentialsFile is a client secret JSON downloaded from the Google
	// Cloud console. It takes precedence over ClientID/ClientSecret.
	CredentialsFile string

	ClientID     string
	ClientSecret string

	// Account selects the stored token (default: "default").
	Account string

	// TokenDir overrides the token directory.
	TokenDir string

	// Endpoint overrides the Tasks API base URL.
	Endpoint string

	// HTTPClient is used for token refreshes and as the base transport of
	// API requests. Nil means a client whose transport propagates trace context.
	HTTPClient *http.Client

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// AuthManager hands out authenticated Tasks API clients for one account.
type AuthManager struct {
	oauth      *oauth2.Config
	store      *FileTokenStore
	account    string
	endpoint   string
	httpClient *http.Client
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
}

// NewAuthManager loads the OAuth client configuration and prepares the token store.
func NewAuthManager(cfg Config) (*AuthManager, error) {
	account := cfg.Account
	if account == "" {
		account = DefaultAccount
	}
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	oauthConfig, err := loadOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	store, err := NewFileTokenStore(cfg.TokenDir)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	return &AuthManager{
		oauth:      oauthConfig,
		store:      store,
		account:    account,
		endpoint:   cfg.Endpoint,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
		logger:     logging.WithComponent(logger, "google"),
	}, nil
}

func loadOAuthConfig(cfg Config) (*oauth2.Config, error) {
	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		oauthConfig, err := google.ConfigFromJSON(data, DefaultOAuthScopes...)
		if err != nil {
			return nil, fmt.Errorf("invalid credentials file %s: %w", cfg.CredentialsFile, err)
		}
		return oauthConfig, nil
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("google OAuth client credentials are required: set --credentials-file or both GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}

	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       DefaultOAuthScopes,
	}, nil
}

// Account returns the account this manager serves.
func (m *AuthManager) Account() string {
	return m.account
}

// TokenPath returns the token file location of the account.
func (m *AuthManager) TokenPath() string {
	return m.store.Path(m.account)
}

// HasToken reports whether a token is stored for the account.
func (m *AuthManager) HasToken() bool {
	return m.store.Has(m.account)
}

// Token returns the stored token without refreshing it.
func (m *AuthManager) Token() (*oauth2.Token, error) {
	return m.store.Load(m.account)
}

func (m *AuthManager) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

// TokenSource returns a refreshing token source whose refreshed tokens are
// written back to the store.
func (m *AuthManager) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	token, err := m.store.Load(m.account)
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return nil, fmt.Errorf("%w; run 'workspace-tasks auth login --account %s' to authorize", err, m.account)
		}
		return nil, err
	}

	return &persistingTokenSource{
		base:    m.oauth.TokenSource(m.withHTTPClient(ctx), token),
		store:   m.store,
		account: m.account,
		current: token,
		metrics: m.metrics,
		logger:  m.logger,
	}, nil
}

// TasksClient returns a Tasks API client authorized with the account's token.
func (m *AuthManager) TasksClient(ctx context.Context) (tasks.API, error) {
	ts, err := m.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(m.withHTTPClient(ctx), ts)),
	}
	if m.endpoint != "" {
		opts = append(opts, option.WithEndpoint(m.endpoint))
	}

	svc, err := tasksapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return tasks.NewGoogleAPI(svc), nil
}

// AuthURL returns the consent page URL for an offline-access login that
// redirects to redirectURL. verifier is the PKCE code verifier.
func (m *AuthManager) AuthURL(redirectURL, state, verifier string) string {
	conf := *m.oauth
	conf.RedirectURL = redirectURL
	return conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
}

// Exchange trades an authorization code for a token and stores it.
func (m *AuthManager) Exchange(ctx context.Context, redirectURL, code, verifier string) error {
	conf := *m.oauth
	conf.RedirectURL = redirectURL

	token, err := conf.Exchange(m.withHTTPClient(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if err := m.store.Save(m.account, token); err != nil {
		return err
	}

	m.logger.Info("stored OAuth token", logging.Account(m.account))
	return nil
}

// persistingTokenSource saves every token that differs from the last one it
// saw, so refreshed access tokens survive restarts.
type persistingTokenSource struct {
	base    oauth2.TokenSource
	store   *FileTokenStore
	account string
	metrics *instrumentation.Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	current *oauth2.Token
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		s.metrics.RecordTokenRefresh(context.Background(), instrumentation.TokenRefreshFailure)
		s.logger.Warn("token refresh failed", logging.Account(s.account), logging.Err(err))
		return nil, fmt.Errorf("failed to refresh OAuth token for account %s: %w", s.account, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && token.AccessToken == s.current.AccessToken {
		return token, nil
	}

	s.metrics.RecordTokenRefresh(context.Background(), instrumentation.TokenRefreshSuccess)

	if err := s.store.Save(s.account, token); err != nil {
		s.logger.Warn("failed to persist refreshed token", logging.Account(s.account), logging.Err(err))
	} else {
		s.logger.Debug("persisted refreshed token",
			logging.Account(s.account),
			slog.String("access_token", logging.SanitizeToken(token.AccessToken)))
	}
	s.current = token
	return token, nil
}
