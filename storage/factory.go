package storage

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ruteri/registration-form/interfaces"
)

// NewAccountStore creates an account store from a location URI.
// The URI format is [scheme]://[auth@]host[:port][/path][?params].
//
// Supported schemes:
//   - memory:// - In-process map, lost on exit
//   - file:// - Local filesystem storage
//   - s3:// - Amazon S3 or compatible object storage
//   - vault:// - HashiCorp Vault KV v2
//
// Several comma separated URIs produce a MultiStore.
func NewAccountStore(locationURI string, log *slog.Logger) (interfaces.AccountStore, error) {
	if strings.Contains(locationURI, ",") {
		var uris []string
		for _, u := range strings.Split(locationURI, ",") {
			if u = strings.TrimSpace(u); u != "" {
				uris = append(uris, u)
			}
		}
		return NewMultiStoreFromURIs(uris, log)
	}

	loc, err := interfaces.NewStorageBackendLocation(strings.TrimSpace(locationURI))
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(loc.Scheme) {
	case "memory":
		return NewMemoryStore(log), nil
	case "file":
		return createFileStore(loc, log)
	case "s3":
		return createS3Store(loc, log)
	case "vault":
		return createVaultStore(loc, log)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %s", interfaces.ErrInvalidLocationURI, loc.Scheme)
	}
}

// NewMultiStoreFromURIs creates a MultiStore from a list of location URIs.
// Invalid URIs are logged and skipped; an error is returned only if no
// store could be created.
func NewMultiStoreFromURIs(locationURIs []string, log *slog.Logger) (*MultiStore, error) {
	stores := make([]interfaces.AccountStore, 0, len(locationURIs))

	for _, uri := range locationURIs {
		store, err := NewAccountStore(uri, log)
		if err != nil {
			log.Warn("Failed to create account store",
				"err", err,
				slog.String("locationURI", uri))
			continue
		}
		stores = append(stores, store)
	}

	if len(stores) == 0 {
		return nil, fmt.Errorf("no valid account stores created")
	}

	return NewMultiStore(stores, log), nil
}

// createS3Store creates an S3 or S3-compatible store.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/path/?region=us-west-2&endpoint=custom.s3.com
func createS3Store(loc interfaces.StorageBackendLocation, log *slog.Logger) (interfaces.AccountStore, error) {
	log.Debug("Creating S3 store", slog.String("bucket", loc.Host))

	if loc.Host == "" {
		return nil, fmt.Errorf("%w: missing bucket name", interfaces.ErrInvalidLocationURI)
	}

	region := loc.GetParam("region")
	if region == "" {
		region = "us-east-1"
	}

	var accessKey, secretKey string
	if loc.Auth != "" {
		accessKey, secretKey, _ = strings.Cut(loc.Auth, ":")
		log.Debug("Using embedded credentials for write access")
	}

	return NewS3Store(loc.Host, strings.TrimPrefix(loc.Path, "/"), region, loc.GetParam("endpoint"), accessKey, secretKey, log)
}

// createFileStore creates a file system store.
// URI format: file:///absolute/path/ or file://./relative/path/
func createFileStore(loc interfaces.StorageBackendLocation, log *slog.Logger) (interfaces.AccountStore, error) {
	log.Debug("Creating file store", slog.String("uri", loc.String()))

	path := loc.Path
	if loc.Host != "" {
		path = loc.Host + "/" + strings.TrimPrefix(path, "/")
	}

	if path == "" {
		return nil, fmt.Errorf("%w: empty path in file URI: %s", interfaces.ErrInvalidLocationURI, loc.String())
	}

	return NewFileStore(path, log)
}

// createVaultStore creates a Vault KV v2 store.
// URI format: vault://host:8200/mount/path?token=s.xxx&tls=true
func createVaultStore(loc interfaces.StorageBackendLocation, log *slog.Logger) (interfaces.AccountStore, error) {
	log.Debug("Creating Vault store", slog.String("host", loc.Host))

	if loc.Host == "" {
		return nil, fmt.Errorf("%w: missing Vault host", interfaces.ErrInvalidLocationURI)
	}

	mount, dataPath, _ := strings.Cut(strings.Trim(loc.Path, "/"), "/")
	if mount == "" {
		return nil, fmt.Errorf("%w: missing Vault mount path", interfaces.ErrInvalidLocationURI)
	}

	scheme := "http"
	if loc.GetParamBool("tls") {
		scheme = "https"
	}

	return NewVaultStore(scheme+"://"+loc.Host, mount, dataPath, loc.GetParam("token"), log)
}
