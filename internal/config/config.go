// Package config carga la configuración del servicio: env vars con prefijo
// GALLERY_ (p.ej. GALLERY_BLOB_DRIVER) y opcionalmente un YAML.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Drivers de blob soportados.
const (
	BlobMemory = "memory"
	BlobFS     = "fs"
	BlobS3     = "s3"
)

var (
	ErrBlobDriverUnknown = errors.New("unknown blob driver")
	ErrBlobBucketMissing = errors.New("s3 blob driver requires a bucket")
)

type Blob struct {
	Driver    string
	Root      string // fs: directorio raíz
	URLBase   string // memory/fs: prefijo con el que el router sirve blobs
	Bucket    string // s3
	Region    string // s3
	Endpoint  string // s3: MinIO / dev
	PathStyle bool   // s3
}

type Identity struct {
	BaseURL string
	APIKey  string
}

type Config struct {
	Addr       string
	DBDSN      string
	StagingDir string

	LogLevel  string
	LogFormat string

	Blob     Blob
	Identity Identity
}

// Load lee defaults, el archivo opcional (path vacío = sin archivo) y env.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("blob.driver", BlobMemory)
	v.SetDefault("blob.url_base", "/blobs")
	v.SetDefault("blob.root", "./blobdata")
	v.SetDefault("blob.region", "us-east-1")

	v.SetEnvPrefix("GALLERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Addr:       v.GetString("addr"),
		DBDSN:      v.GetString("db.dsn"),
		StagingDir: v.GetString("staging.dir"),
		LogLevel:   v.GetString("log.level"),
		LogFormat:  v.GetString("log.format"),
		Blob: Blob{
			Driver:    strings.ToLower(strings.TrimSpace(v.GetString("blob.driver"))),
			Root:      v.GetString("blob.root"),
			URLBase:   v.GetString("blob.url_base"),
			Bucket:    v.GetString("blob.bucket"),
			Region:    v.GetString("blob.region"),
			Endpoint:  v.GetString("blob.endpoint"),
			PathStyle: v.GetBool("blob.path_style"),
		},
		Identity: Identity{
			BaseURL: v.GetString("identity.base_url"),
			APIKey:  v.GetString("identity.api_key"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate chequea que la config sea consistente; devuelve sentinels.
func (c Config) Validate() error {
	switch c.Blob.Driver {
	case BlobMemory, BlobFS:
	case BlobS3:
		if strings.TrimSpace(c.Blob.Bucket) == "" {
			return ErrBlobBucketMissing
		}
	default:
		return fmt.Errorf("%w: %q", ErrBlobDriverUnknown, c.Blob.Driver)
	}
	return nil
}
