// Package module wires resolution into the API using modkit
package module

import (
	"net/http"

	"drsgate/internal/adapters/upstream/bond"
	"drsgate/internal/adapters/upstream/drs"
	modkit "drsgate/internal/modkit"
	"drsgate/internal/modkit/httpkit"
	str "drsgate/internal/platform/strings"
	"drsgate/internal/services/audit"
	resolvehttp "drsgate/internal/services/resolve/http"
	resolvesvc "drsgate/internal/services/resolve/service"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc  *resolvesvc.Service
	sink *audit.AsyncSink
}

// New constructs a resolve module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("resolve"), modkit.WithPrefix("/objects")}, opts...)...)

	cfg := deps.Cfg
	drsClient := drs.NewClient(drs.Options{
		Scheme:  cfg.MayString("DRS_SCHEME", "https"),
		Timeout: cfg.MayDuration("DRS_TIMEOUT", 0),
	}, deps.Metrics)
	broker := bond.NewClient(bond.Options{
		BaseURL: cfg.MustString("BOND_URL"),
		Timeout: cfg.MayDuration("BOND_TIMEOUT", 0),
	}, deps.Metrics)

	sink := audit.NewAsyncSink(audit.NewLogSink(), cfg.MayInt("AUDIT_BUFFER", 256))

	svc := resolvesvc.New(deps.Providers, drsClient, broker, sink, deps.Metrics, resolvesvc.Config{
		Timeout:       cfg.MayDuration("RESOLVE_TIMEOUT", 0),
		CredentialTTL: cfg.MayDuration("CREDENTIAL_TTL", 0),
	})

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
		sink:      sink,
	}
	m.ports = Ports{Broker: broker}

	external := b.Register
	m.register = func(r httpkit.Router) {
		resolvehttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// Ports exposes cross-module surfaces owned by resolve
type Ports struct {
	// Broker is shared with meta readiness checks
	Broker *bond.Client
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return m.ports }

// Close flushes the audit pipeline
func (m *Module) Close() { m.sink.Close() }
