// Package api provides the HTTP API for the application
package api

import (
	"drsgate/internal/core/providers"
	"drsgate/internal/platform/config"
	"drsgate/internal/platform/logger"
	"drsgate/internal/platform/metrics"
	phttp "drsgate/internal/platform/net/http"

	"drsgate/internal/modkit"
	"drsgate/internal/modkit/httpkit"
	"drsgate/internal/modkit/module"
	"drsgate/internal/modkit/swaggerkit"

	metamod "drsgate/internal/services/api/meta/module"
	resolvemod "drsgate/internal/services/resolve/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Providers      *providers.Registry
	Metrics        *metrics.Metrics
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router and returns a
// closer that flushes module pipelines on shutdown
func Mount(r phttp.Router, opt Options) func() {
	// shared deps for modules
	deps := modkit.Deps{
		Log:       *opt.Logger,
		Cfg:       opt.Config,
		Providers: opt.Providers,
		Metrics:   opt.Metrics,
	}

	// Construct resolve first and hand its broker to meta so readiness
	// probes the same client that serves traffic
	resolve := resolvemod.New(deps)
	broker := module.MustPortsOf[resolvemod.Ports](resolve).Broker

	meta := metamod.New(
		deps,
		modkit.WithPorts(metamod.Ports{
			Broker: broker,
		}),
	)

	mods := []module.Module{
		meta,
		resolve,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler + prometheus exposition
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
		if opt.Metrics != nil {
			r.Handle("/metrics", opt.Metrics.Handler())
		}

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})

	return func() { resolve.Close() }
}
