// @title         Drsgate API
// @version       0.1.0
// @description   DRS URI resolution with negotiated authorization

package main

import (
	"context"

	"drsgate/internal/core/providers"
	"drsgate/internal/platform/config"
	"drsgate/internal/platform/logger"
	"drsgate/internal/platform/metrics"
	phttp "drsgate/internal/platform/net/http"

	"drsgate/internal/services/api"
)

func main() {
	// service-scoped config (DRSGATE_*)
	root := config.New()
	cfg := root.Prefix("DRSGATE_")

	// bring up logging early
	l := logger.Get()

	// provider catalog (file when DRSGATE_PROVIDERS_FILE is set, else built-in)
	reg, err := providers.Load(cfg)
	if err != nil {
		l.Panic().Err(err).Msg("provider catalog load failed")
	}

	m := metrics.New()

	// http server (reads DRSGATE_API_PORT)
	srv := phttp.NewServer(cfg)

	// mount our API
	closeAPI := api.Mount(
		srv.Router(),
		api.Options{
			Config:         cfg,
			Providers:      reg,
			Metrics:        m,
			Logger:         l,
			EnableSwagger:  cfg.MayBool("SWAGGER", true),
			EnableProfiler: cfg.MayBool("PROFILER", true),
		},
	)
	defer closeAPI()

	// run
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
