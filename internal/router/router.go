package router

import (
	"database/sql"
	"io"
	"net/http"
	"os"

	blobmem "plant-photo-gallery/internal/adapters/blob/memory"
	mem "plant-photo-gallery/internal/adapters/storage/memory"
	pg "plant-photo-gallery/internal/adapters/storage/postgres"
	"plant-photo-gallery/internal/domain/activity"
	"plant-photo-gallery/internal/domain/plants"
	"plant-photo-gallery/internal/middleware"
	"plant-photo-gallery/internal/platform/logger"
	"plant-photo-gallery/internal/platform/metrics"
	"plant-photo-gallery/internal/ports/auth"
	blobport "plant-photo-gallery/internal/ports/blob"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev: X-Debug-User-ID)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: blob store ya construido. Si no, in-memory.
	Blobs blobport.Store

	Log        logger.Logger
	StagingDir string
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("GALLERY_DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres open failed, falling back to in-memory", map[string]any{"err": err.Error()})
			}
		}
	}

	var (
		plantsRepo   plants.Repository
		activityRepo activity.Repository
	)
	if db != nil {
		plantsRepo = pg.NewPlantsRepo(db)
		activityRepo = pg.NewActivityRepo(db)
	} else {
		plantsRepo = mem.NewPlantsRepo()
		activityRepo = mem.NewActivityRepo()
	}

	blobs := opts.Blobs
	if blobs == nil {
		blobs = blobmem.New("/blobs")
	}

	reg := prometheus.NewRegistry()
	gal := metrics.NewGallery(reg)

	// Services por módulo
	plantsSvc := plants.NewService(plantsRepo, blobs, plants.Options{
		Log:        log,
		Metrics:    gal,
		StagingDir: opts.StagingDir,
	})
	activitySvc := activity.NewService(activityRepo)

	// Rutas por módulo
	plants.RegisterRoutes(r, plantsSvc, activitySvc)
	activity.RegisterRoutes(r, activitySvc)

	// Con drivers locales el router sirve los blobs él mismo; con s3 las
	// ImageURL apuntan directo al bucket.
	if blobs.Driver() != blobport.DriverS3 {
		r.Get("/blobs/*", serveBlobHandler(blobs))
	}

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}

func serveBlobHandler(blobs blobport.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		info, rc, err := blobs.Get(r.Context(), key)
		if err != nil {
			http.Error(w, "blob not found", http.StatusNotFound)
			return
		}
		defer rc.Close()

		if info.ContentType != "" {
			w.Header().Set("Content-Type", info.ContentType)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, rc)
	}
}
