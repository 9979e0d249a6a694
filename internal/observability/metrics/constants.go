// Package metrics defines the Prometheus collectors of the service.
package metrics

// Histogram bucket parameters.
const (
	BucketStart1ms   = 0.001
	BucketStart100B  = 100
	BucketFactor2    = 2
	BucketFactor10   = 10
	BucketCount6     = 6
	BucketCount12    = 12
	BucketCount15    = 15
	BucketStart100ms = 0.1
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
	StatusLimited = "limited"
)
