package domain

import "time"

// ServiceLog is a persisted log event row in the primary store. Rows start
// unsynced and are drained into the secondary index by the sync daemon.
type ServiceLog struct {
	ID            string    `json:"id"`
	ServiceName   string    `json:"service_name"`
	Level         string    `json:"level"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
	SyncedToIndex bool      `json:"synced_to_index"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewServiceLog builds a ServiceLog row from a log event.
func NewServiceLog(id string, ev *LogEvent) *ServiceLog {
	return &ServiceLog{
		ID:          id,
		ServiceName: ev.ServiceName,
		Level:       ev.Level,
		Message:     ev.Message,
		Timestamp:   ev.Timestamp,
		CreatedAt:   time.Now().UTC(),
	}
}

// SystemMetric is a persisted metric event row in the primary store.
type SystemMetric struct {
	ID            string            `json:"id"`
	ServiceName   string            `json:"service_name"`
	HostName      string            `json:"host_name"`
	MetricType    string            `json:"metric_type"`
	Value         float64           `json:"value"`
	Unit          string            `json:"unit,omitempty"`
	Tags          map[string]string `json:"tags,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
	SyncedToIndex bool              `json:"synced_to_index"`
	CreatedAt     time.Time         `json:"created_at"`
}

// NewSystemMetric builds a SystemMetric row from a metric event.
func NewSystemMetric(id string, ev *MetricEvent) *SystemMetric {
	return &SystemMetric{
		ID:          id,
		ServiceName: ev.ServiceName,
		HostName:    ev.HostName,
		MetricType:  ev.MetricType,
		Value:       ev.Value,
		Unit:        ev.Unit,
		Tags:        ev.Tags,
		Timestamp:   ev.Timestamp,
		CreatedAt:   time.Now().UTC(),
	}
}

// ServiceHealth is the health classification of a service derived from its
// unresolved alerts.
type ServiceHealth string

const (
	ServiceHealthy  ServiceHealth = "healthy"
	ServiceDegraded ServiceHealth = "degraded"
	ServiceDown     ServiceHealth = "down"
)

// ServiceStatus is a periodic rollup of a service's alert state, computed
// by the status sweep and synced to the secondary index like any other
// record type.
type ServiceStatus struct {
	ID            string        `json:"id"`
	ServiceName   string        `json:"service_name"`
	Status        ServiceHealth `json:"status"`
	ActiveAlerts  int           `json:"active_alerts"`
	CheckedAt     time.Time     `json:"checked_at"`
	SyncedToIndex bool          `json:"synced_to_index"`
}
