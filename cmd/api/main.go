package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	idtoken "plant-photo-gallery/internal/adapters/auth/idtoken"
	blobfs "plant-photo-gallery/internal/adapters/blob/fs"
	blobmem "plant-photo-gallery/internal/adapters/blob/memory"
	blobs3 "plant-photo-gallery/internal/adapters/blob/s3"
	pg "plant-photo-gallery/internal/adapters/storage/postgres"
	"plant-photo-gallery/internal/config"
	"plant-photo-gallery/internal/platform/logger"
	"plant-photo-gallery/internal/ports/auth"
	blobport "plant-photo-gallery/internal/ports/blob"
	"plant-photo-gallery/internal/router"
)

func main() {
	cfg, err := config.Load(os.Getenv("GALLERY_CONFIG"))
	if err != nil {
		logger.NewFromEnv().Error("invalid config", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    "plant-photo-gallery",
	})

	ctx := context.Background()

	// Verifier de identidad: sin BaseURL+APIKey queda nil y el router corre
	// en modo dev (X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if cfg.Identity.BaseURL != "" && cfg.Identity.APIKey != "" {
		client, err := idtoken.NewClient(idtoken.Config{
			BaseURL: cfg.Identity.BaseURL,
			APIKey:  cfg.Identity.APIKey,
		})
		if err != nil {
			log.Error("idtoken client", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		verifier = idtoken.NewVerifier(client)
	}

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			log.Error("postgres open", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		if err := pg.EnsureSchema(ctx, db); err != nil {
			log.Error("postgres schema", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
	}

	var blobs blobport.Store
	switch cfg.Blob.Driver {
	case config.BlobS3:
		blobs, err = blobs3.New(ctx, blobs3.Config{
			Region:    cfg.Blob.Region,
			Bucket:    cfg.Blob.Bucket,
			Endpoint:  cfg.Blob.Endpoint,
			PathStyle: cfg.Blob.PathStyle,
		})
		if err != nil {
			log.Error("s3 blob store", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
	case config.BlobFS:
		blobs, err = blobfs.New(cfg.Blob.Root, cfg.Blob.URLBase)
		if err != nil {
			log.Error("fs blob store", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
	default:
		blobs = blobmem.New(cfg.Blob.URLBase)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		DB:           db,
		Blobs:        blobs,
		Log:          log,
		StagingDir:   cfg.StagingDir,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("starting server", map[string]any{
		"addr":        cfg.Addr,
		"blob_driver": string(blobs.Driver()),
		"postgres":    db != nil,
	})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}
