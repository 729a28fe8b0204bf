package audit

import "context"

type ipKey struct{}

// WithClientIP returns a copy of ctx carrying the caller's IP for audit records.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

// ClientIP is an IPExtractor reading the value stored by WithClientIP.
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(ipKey{}).(string)
	return ip
}
