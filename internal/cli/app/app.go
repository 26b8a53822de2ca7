// Package app assembles the CLI's session, API client and router from
// configuration. One App lives for one command invocation.
package app

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/novelhub-dev/novelhub/internal/cli/auth"
	"github.com/novelhub-dev/novelhub/internal/cli/client"
	"github.com/novelhub-dev/novelhub/internal/cli/config"
	"github.com/novelhub-dev/novelhub/internal/cli/router"
	"github.com/novelhub-dev/novelhub/internal/cli/session"
	"github.com/novelhub-dev/novelhub/internal/logger"
)

// Options override parts of the wiring, mostly for tests
type Options struct {
	Version string
	// LogWriter defaults to stderr
	LogWriter io.Writer
	// Backend replaces the backend named by the config
	Backend    auth.Backend
	HTTPClient *http.Client
}

// App holds everything a command needs
type App struct {
	Config *config.Config
	Log    zerolog.Logger
	Store  *auth.Store
	Auth   *session.AuthContext
	Flows  *session.Flows
	Client *client.Client
	Router *router.Router
}

// New builds an App. The credential store is hydrated here, once.
func New(cfg *config.Config, opts Options) (*App, error) {
	w := opts.LogWriter
	if w == nil {
		w = os.Stderr
	}
	log := logger.New(w, cfg.LogLevel, cfg.LogFormat)

	backend := opts.Backend
	if backend == nil {
		var err error
		backend, err = OpenBackend(cfg)
		if err != nil {
			return nil, err
		}
	}

	store := auth.Open(backend, log.With().Str("component", "credentials").Logger())
	authCtx := session.NewAuthContext(store, log.With().Str("component", "session").Logger())

	version := opts.Version
	if version == "" {
		version = "dev"
	}
	api := client.New(cfg.APIURL,
		client.UserAgent(version),
		client.RequestID(),
		client.Authorizer(authCtx),
	)
	if opts.HTTPClient != nil {
		api.SetHTTPClient(opts.HTTPClient)
	}

	r := router.New(router.NewTable(router.DefaultRoutes()), log.With().Str("component", "router").Logger())
	r.BeforeEach(router.NewGuard(authCtx, router.LoginPath).Hook())

	return &App{
		Config: cfg,
		Log:    log,
		Store:  store,
		Auth:   authCtx,
		Flows:  session.NewFlows(authCtx, api, log.With().Str("component", "flows").Logger()),
		Client: api,
		Router: r,
	}, nil
}

// OpenBackend returns the credential backend named by cfg.Credentials
func OpenBackend(cfg *config.Config) (auth.Backend, error) {
	switch cfg.Credentials {
	case config.CredentialsKeyring:
		return auth.NewKeyringBackend(cfg.Host()), nil
	case config.CredentialsFile:
		path := cfg.CredentialFile
		if path == "" {
			var err error
			path, err = config.DefaultCredentialFile()
			if err != nil {
				return nil, err
			}
		}
		return auth.NewFileBackend(path), nil
	case config.CredentialsMemory:
		return auth.NewMemoryBackend(""), nil
	default:
		return nil, fmt.Errorf("unknown credential backend %q", cfg.Credentials)
	}
}

// Close drops the in-memory session. The stored credential is kept.
func (a *App) Close() {
	a.Auth.Close()
}
