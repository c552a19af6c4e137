package handler

import (
	"context"
	"net/http"
	"time"
)

// healthTimeout bounds the pings on each health check
const healthTimeout = 2 * time.Second

// Pinger checks a backing dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

type namedPinger struct {
	name   string
	pinger Pinger
}

// HealthHandler reports service liveness. The store decides the status code;
// optional components (MQTT, InfluxDB) only mark the service degraded.
type HealthHandler struct {
	store      Pinger
	components []namedPinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// AddComponent reports an optional dependency under name
func (h *HealthHandler) AddComponent(name string, p Pinger) {
	h.components = append(h.components, namedPinger{name: name, pinger: p})
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	body := map[string]string{"status": "ok", "store": "ok"}
	status := http.StatusOK

	for _, c := range h.components {
		if err := c.pinger.Ping(ctx); err != nil {
			body[c.name] = "unreachable"
			body["status"] = "degraded"
			continue
		}
		body[c.name] = "ok"
	}

	if err := h.store.Ping(ctx); err != nil {
		body["store"] = "unreachable"
		body["status"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	WriteJSON(w, status, body)
}
