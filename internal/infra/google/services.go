// Package google owns the Google Cloud service handles. Everything is
// constructed once at process start; a missing credential disables that one
// capability instead of failing the boot.
package google

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
	speech "google.golang.org/api/speech/v1"
	translate "google.golang.org/api/translate/v2"
	vision "google.golang.org/api/vision/v1"

	"kalakarigar/internal/infra"
)

// Capability names used in health reporting.
const (
	CapSpeech    = "speech"
	CapTranslate = "translate"
	CapVision    = "vision"
	CapFirestore = "firestore"
	CapStorage   = "storage"
)

// Services holds every constructed Google Cloud client. A nil field means
// the capability is disabled; Reason explains why.
type Services struct {
	Speech    *speech.Service
	Translate *translate.Service
	Vision    *vision.Service
	Firestore *firestore.Client
	Storage   *gcs.Client

	disabled map[string]string
}

// NewServices builds clients for every capability the configuration covers.
// Construction errors disable the capability and are logged, never fatal.
func NewServices(ctx context.Context, cfg *infra.Config, log infra.Logger) *Services {
	s := &Services{disabled: make(map[string]string)}

	if cfg.GCPCredentialsJSON == "" {
		reason := "GCP_CREDENTIALS_JSON not configured"
		for _, name := range []string{CapSpeech, CapTranslate, CapVision} {
			s.disabled[name] = reason
		}
	} else {
		creds := option.WithCredentialsJSON([]byte(cfg.GCPCredentialsJSON))

		if svc, err := speech.NewService(ctx, creds); err != nil {
			s.disable(log, CapSpeech, err)
		} else {
			s.Speech = svc
		}
		if svc, err := translate.NewService(ctx, creds); err != nil {
			s.disable(log, CapTranslate, err)
		} else {
			s.Translate = svc
		}
		if svc, err := vision.NewService(ctx, creds); err != nil {
			s.disable(log, CapVision, err)
		} else {
			s.Vision = svc
		}
	}

	switch {
	case cfg.GCPProjectID == "":
		s.disabled[CapFirestore] = "GCP_PROJECT_ID not configured"
	case cfg.GCPCredentialsJSON == "":
		s.disabled[CapFirestore] = "GCP_CREDENTIALS_JSON not configured"
	default:
		client, err := firestore.NewClient(ctx, cfg.GCPProjectID, option.WithCredentialsJSON([]byte(cfg.GCPCredentialsJSON)))
		if err != nil {
			s.disable(log, CapFirestore, err)
		} else {
			s.Firestore = client
		}
	}

	switch {
	case cfg.StorageBucket == "":
		s.disabled[CapStorage] = "STORAGE_BUCKET not configured"
	case cfg.GCPCredentialsJSON == "":
		s.disabled[CapStorage] = "GCP_CREDENTIALS_JSON not configured"
	default:
		client, err := gcs.NewClient(ctx, option.WithCredentialsJSON([]byte(cfg.GCPCredentialsJSON)))
		if err != nil {
			s.disable(log, CapStorage, err)
		} else {
			s.Storage = client
		}
	}

	for name, reason := range s.disabled {
		log.Warn().Str("capability", name).Str("reason", reason).Msg("google capability disabled")
	}
	return s
}

func (s *Services) disable(log infra.Logger, name string, err error) {
	s.disabled[name] = fmt.Sprintf("client construction failed: %v", err)
	log.Error().Err(err).Str("capability", name).Msg("google client construction failed")
}

// DisabledReason returns the reason a capability is off, or "" when it is
// available.
func (s *Services) DisabledReason(name string) string {
	if s == nil {
		return "services not initialized"
	}
	return s.disabled[name]
}

// Health reports each capability as "ok" or its disable reason.
func (s *Services) Health() map[string]string {
	report := make(map[string]string, 5)
	for _, name := range []string{CapSpeech, CapTranslate, CapVision, CapFirestore, CapStorage} {
		if reason, off := s.disabled[name]; off {
			report[name] = reason
		} else {
			report[name] = "ok"
		}
	}
	return report
}

// Close releases clients that hold connections.
func (s *Services) Close() {
	if s.Firestore != nil {
		_ = s.Firestore.Close()
	}
	if s.Storage != nil {
		_ = s.Storage.Close()
	}
}
