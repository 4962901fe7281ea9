package entity

import "context"

// Logger specifies a contextual, structured logger.
// Implemented at the edge (sabot in cmd/srql); the core only emits.
type Logger interface {
	Info(ctx context.Context, msg string, kv ...any)
	Error(ctx context.Context, msg string, err error, kv ...any)
}
