package models

// HostStats is a snapshot of the machine the API runs on.
type HostStats struct {
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	Load1             float64 `json:"load1"`
}

// Health is returned by the health endpoint.
type Health struct {
	Status        string     `json:"status"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	Host          *HostStats `json:"host,omitempty"`
}
