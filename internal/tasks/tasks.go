package tasks

// Task type constants used with Asynq.

const (
	// TypeScanFolders walks the storage prefix and enqueues one product
	// task per unprocessed folder.
	TypeScanFolders = "scan:folders"
	// TypeProcessProduct runs the full listing pipeline for one folder.
	TypeProcessProduct = "product:process"
)

// Queue names.
const (
	QueueScans    = "scans"
	QueueProducts = "products"
)
