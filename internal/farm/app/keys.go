package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/farmstead/pkg/jwtx"
)

var ErrNoKeySource = errors.New("one of AUTH_JWKS_FILE or AUTH_JWKS_URL must be set")

// KeyLoader keeps the verification KeySet in sync with the identity
// provider's published keys. A failed refresh keeps the previous keys.
type KeyLoader struct {
	Keys     *jwtx.KeySet
	File     string
	URL      string
	Client   *http.Client
	Interval time.Duration
	Logger   *slog.Logger

	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewKeyLoader(cfg Config, logger *slog.Logger) (*KeyLoader, error) {
	if cfg.JWKSFile == "" && cfg.JWKSURL == "" {
		return nil, ErrNoKeySource
	}
	return &KeyLoader{
		Keys:     jwtx.NewKeySet(),
		File:     cfg.JWKSFile,
		URL:      cfg.JWKSURL,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Interval: cfg.JWKSRefresh,
		Logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Load replaces the key set from the configured source. The file wins when
// both are set.
func (l *KeyLoader) Load(ctx context.Context) error {
	var (
		jwks jwtx.JWKS
		err  error
	)
	if l.File != "" {
		jwks, err = jwtx.ReadJWKSFile(l.File)
	} else {
		jwks, err = jwtx.FetchJWKS(ctx, l.Client, l.URL)
	}
	if err != nil {
		return err
	}
	if len(jwks.Keys) == 0 {
		return fmt.Errorf("jwks from %s has no keys", l.source())
	}
	if err := l.Keys.ResetFromJWKS(jwks); err != nil {
		return err
	}

	l.Logger.Info("verification keys loaded", slog.String("source", l.source()), slog.Int("num_keys", len(jwks.Keys)))
	return nil
}

func (l *KeyLoader) source() string {
	if l.File != "" {
		return l.File
	}
	return l.URL
}

// Start refreshes keys in the background until Stop. No-op when Interval
// is zero.
func (l *KeyLoader) Start() {
	l.started = true
	if l.Interval <= 0 {
		close(l.doneCh)
		return
	}
	go l.run()
}

func (l *KeyLoader) Stop() {
	if !l.started {
		return
	}
	close(l.stopCh)
	<-l.doneCh
}

func (l *KeyLoader) run() {
	defer close(l.doneCh)

	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := l.Load(ctx); err != nil {
				l.Logger.Warn("key refresh failed, keeping previous keys", slog.Any("error", err))
			}
			cancel()
		case <-l.stopCh:
			return
		}
	}
}
