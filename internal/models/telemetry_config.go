package models

// TelemetryConfig tunes the usage telemetry recorder: the async persistence
// worker pool and the in-memory recent-call ring buffer.
type TelemetryConfig struct {
	WorkerPoolSize int `json:"worker_pool_size,omitzero" yaml:"worker_pool_size"`
	BufferSize     int `json:"buffer_size,omitzero" yaml:"buffer_size"`
	RingCapacity   int `json:"ring_capacity,omitzero" yaml:"ring_capacity"`
}

// ApplyDefaults fills unset fields with sane defaults.
func (c *TelemetryConfig) ApplyDefaults() {
	if c.WorkerPoolSize <= 0 {
		c.WorkerPoolSize = 2
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 256
	}
	if c.RingCapacity <= 0 {
		c.RingCapacity = 50
	}
}
