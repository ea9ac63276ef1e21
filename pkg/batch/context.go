package batch

import "context"

// ContextKey is the context key for the action generator.
var ContextKey = &struct{ string }{"batch"}

// FromContext returns the action generator from the context.
func FromContext(ctx context.Context) *Generator {
	if g, ok := ctx.Value(ContextKey).(*Generator); ok {
		return g
	}

	return nil
}

// WithContext returns a new context with the action generator.
func WithContext(ctx context.Context, g *Generator) context.Context {
	return context.WithValue(ctx, ContextKey, g)
}
