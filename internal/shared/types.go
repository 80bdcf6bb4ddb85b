package shared

// Asynq task types
const (
	TypeReconcileBookCounts = "bookcount:reconcile"
	TypeArchiveExport       = "export:archive"
)

// Asynq queues, weight xem cmd/worker
const (
	QueueCritical    = "critical"
	QueueDefault     = "default"
	QueueMaintenance = "maintenance"
)

// ReconcilePayload - AuthorID rỗng = verify toàn bộ authors
type ReconcilePayload struct {
	AuthorID string `json:"author_id,omitempty"`
}

// ArchiveExportPayload - payload của export archive job
type ArchiveExportPayload struct {
	RequestedBy string `json:"requested_by,omitempty"`
}
