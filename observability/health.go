package observability

// HealthStatus is the coarse state of an outbound dependency.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the state of one client stack as seen from its
// resilience layers.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Degrade lowers h to status unless it is already worse, recording detail
// under key.
func (h *Health) Degrade(status HealthStatus, key, detail string) {
	if h.Details == nil {
		h.Details = make(map[string]string)
	}
	h.Details[key] = detail
	if h.Status == HealthStatusDown {
		return
	}
	if status == HealthStatusDown || h.Status == "" || h.Status == HealthStatusUp {
		h.Status = status
	}
}
