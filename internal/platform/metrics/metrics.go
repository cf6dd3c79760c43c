// Package metrics agrupa los contadores Prometheus de la galería.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Etiquetas de etapa para subidas fallidas.
const (
	StageStaging      = "staging"
	StageBlobUpload   = "blob_upload"
	StageRecordCreate = "record_create"
)

type Gallery struct {
	UploadsStarted   prometheus.Counter
	UploadsCompleted prometheus.Counter
	UploadsFailed    *prometheus.CounterVec // label: stage
	UploadsRejected  prometheus.Counter     // capacidad llena, sin llamadas remotas
	DescriptionEdits prometheus.Counter
	EditsDropped     prometheus.Counter // edición sobre slot vacío
	Reconciles       prometheus.Counter
}

func NewGallery(reg prometheus.Registerer) *Gallery {
	f := promauto.With(reg)
	return &Gallery{
		UploadsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gallery", Name: "uploads_started_total",
			Help: "Capture workflows started.",
		}),
		UploadsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gallery", Name: "uploads_completed_total",
			Help: "Capture workflows that reached record_created.",
		}),
		UploadsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gallery", Name: "uploads_failed_total",
			Help: "Capture workflows failed, by stage.",
		}, []string{"stage"}),
		UploadsRejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gallery", Name: "uploads_rejected_total",
			Help: "Captures rejected before any remote call (slots full).",
		}),
		DescriptionEdits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gallery", Name: "description_edits_total",
			Help: "Description edits routed to the remote store.",
		}),
		EditsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gallery", Name: "description_edits_dropped_total",
			Help: "Description edits dropped because the slot was empty.",
		}),
		Reconciles: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gallery", Name: "reconciles_total",
			Help: "Reconcile-on-load runs.",
		}),
	}
}

// NewNop devuelve un set registrado en un registry descartable,
// para tests o cuando el caller no expone /metrics.
func NewNop() *Gallery {
	return NewGallery(prometheus.NewRegistry())
}
