// Package modkit provides module wiring and core deps
package modkit

import (
	"drsgate/internal/core/providers"
	"drsgate/internal/platform/config"
	"drsgate/internal/platform/logger"
	"drsgate/internal/platform/metrics"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log       logger.Logger
	Cfg       config.Conf
	Providers *providers.Registry
	Metrics   *metrics.Metrics
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check for optional fields
func (d Deps) ZeroOK() bool { return true }
