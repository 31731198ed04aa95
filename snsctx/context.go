// Package snsctx carries per-call flags through context for the transports.
package snsctx

import "context"

type ctxKey int

const verboseKey ctxKey = iota

// IsVerbose reports whether transports should dump raw traffic.
func IsVerbose(ctx context.Context) bool {
	verbose, ok := ctx.Value(verboseKey).(bool)
	return ok && verbose
}

func SetVerbose(parent context.Context, value bool) context.Context {
	return context.WithValue(parent, verboseKey, value)
}
