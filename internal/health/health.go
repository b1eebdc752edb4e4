package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const checkTimeout = 3 * time.Second

// Pinger reports whether a dependency answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Checks are the probes behind the endpoints. Gateway may be nil before the bot connects.
type Checks struct {
	Database Pinger
	Portal   Pinger
	Gateway  func() bool
}

type status struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewRouter serves /healthz (process and databases) and /readyz (also the Discord gateway).
func NewRouter(checks Checks) http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, checks.databases(r.Context()))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		results := checks.databases(r.Context())
		if checks.Gateway != nil && checks.Gateway() {
			results["discord"] = "ok"
		} else {
			results["discord"] = "disconnected"
		}
		writeStatus(w, results)
	})

	return router
}

func (c Checks) databases(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	results := make(map[string]string)
	for name, p := range map[string]Pinger{"database": c.Database, "portal": c.Portal} {
		if p == nil {
			continue
		}
		if err := p.PingContext(ctx); err != nil {
			logrus.WithError(err).WithField("check", name).Warn("Health check failed")
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}
	return results
}

func writeStatus(w http.ResponseWriter, checks map[string]string) {
	body := status{Status: "ok", Checks: checks}
	code := http.StatusOK

	for _, result := range checks {
		if result != "ok" {
			body.Status = "unavailable"
			code = http.StatusServiceUnavailable
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
