// Package net provides utilities for working with request contexts
package net

import (
	"context"
	"net"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const (
	keyCallerToken ctxKey = "caller_token"
	keyClientIP    ctxKey = "client_ip"
)

// WithRequest annotates context with common request scoped ids
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	return ctx
}

// WithCallerToken annotates context with the caller's raw bearer token
func WithCallerToken(ctx context.Context, token string) context.Context {
	if token != "" {
		ctx = context.WithValue(ctx, keyCallerToken, token)
	}
	return ctx
}

// WithClientIP annotates context with the caller's network address
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ip != "" {
		ctx = context.WithValue(ctx, keyClientIP, ip)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	if v := chimw.GetReqID(ctx); v != "" {
		return v
	}
	return ""
}

// CallerToken returns the caller's bearer token if present, "" otherwise
func CallerToken(ctx context.Context) string {
	if v, ok := ctx.Value(keyCallerToken).(string); ok {
		return v
	}
	return ""
}

// ClientIP returns the caller's address on the context if present
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(keyClientIP).(string); ok {
		return v
	}
	return ""
}

// RemoteIP extracts the bare IP from a request RemoteAddr, which the RealIP
// middleware has already rewritten from forwarding headers when present
func RemoteIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
