// Command heisync imports higher-education institutions from a remote
// JSON:API index into a local store.
package main

import (
	"context"
	"net/http"
	"os"
	"os/user"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/heisync/internal/adapters/driven/config/env"
	"github.com/custodia-labs/heisync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/heisync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/heisync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/heisync/internal/adapters/driving/cli"
	"github.com/custodia-labs/heisync/internal/core/domain"
	"github.com/custodia-labs/heisync/internal/core/ports/driven"
	"github.com/custodia-labs/heisync/internal/core/services"
	"github.com/custodia-labs/heisync/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// envOverrides maps config keys to the environment variables that override them.
var envOverrides = map[string]string{
	services.KeyIndexEndpoint: "HEISYNC_INDEX_ENDPOINT",
	services.KeyRemoteToken:   "HEISYNC_TOKEN",
}

func main() {
	if err := env.LoadDotEnv(); err != nil {
		logger.Error("load .env: %v", err)
	}

	cli.SetVersion(version)
	cli.SetSetup(setup)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup builds the stores and services for one command run.
func setup(opts cli.Options) (func(), error) {
	configStore, err := newConfigStore(opts)
	if err != nil {
		return nil, err
	}
	mapping := services.NewMappingService(configStore)
	settings := mapping.RemoteSettings()

	var (
		institutions driven.InstitutionStore
		documents    driven.CacheStore
		cleanup      = func() {}
	)
	if opts.Ephemeral {
		institutions = memory.NewInstitutionStore()
		documents = memory.NewCacheStore()
	} else {
		store, err := sqlite.NewStore(opts.DataDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("database: %s", store.Path())
		institutions = store.InstitutionStore()
		documents = store.CacheStore()
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Error("close database: %v", err)
			}
		}
	}

	fetcher := services.NewFetcher(newHTTPClient(settings), services.NewValidator())
	fetcher.SetRateLimit(settings.RateLimit)

	scope := settings.CacheScope
	if configStore.GetString(services.KeyCacheScope) == "" {
		if u, err := user.Current(); err == nil && u.Username != "" {
			scope = u.Username
		}
	}
	cache := services.NewDocumentCache(documents, fetcher, scope)
	cache.SetTTL(settings.CacheTTL)

	manager := services.NewInstitutionManager(institutions, cache, services.NewProcessor(), mapping)
	cli.SetServices(manager, mapping, cache)
	return cleanup, nil
}

func newConfigStore(opts cli.Options) (driven.ConfigStore, error) {
	if opts.Ephemeral {
		return env.NewConfigStore(memory.NewConfigStore(), envOverrides), nil
	}
	fileStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("config: %s", fileStore.Path())
	return env.NewConfigStore(fileStore, envOverrides), nil
}

// newHTTPClient returns a client with the configured timeout that sends the
// token as a bearer token, if one is set.
func newHTTPClient(settings domain.RemoteSettings) *http.Client {
	if settings.Token == "" {
		return &http.Client{Timeout: settings.Timeout}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: settings.Token})
	client := oauth2.NewClient(context.Background(), ts)
	client.Timeout = settings.Timeout
	return client
}
