package domain

// DatabaseStatus represents the load state of the SBAS database.
type DatabaseStatus string

const (
	StatusPending DatabaseStatus = "pending"
	StatusLoading DatabaseStatus = "loading"
	StatusReady   DatabaseStatus = "ready"
	StatusError   DatabaseStatus = "error"
)
