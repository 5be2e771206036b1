package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
// Vectors are unit-normalized, fixed dimensionality per deployment.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
