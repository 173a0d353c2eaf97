// Package drsuri parses DRS object URIs into a normalized host and path.
//
// Accepted shapes are drs://host/suffix, drs://compactId:suffix and the
// legacy dos:// scheme for both. Compact identifiers (dg.XXXX prefixes) are
// resolved against a static table to the hosting environment's hostname
package drsuri

import (
	"regexp"

	perr "drsgate/internal/platform/errors"

	"golang.org/x/text/cases"
)

var (
	// compact identifiers allow : or / before the suffix
	compactRe = regexp.MustCompile(`^(?i)(?:dos|drs)://(dg\.[0-9a-z-]+)[:/](.+)$`)
	hostRe    = regexp.MustCompile(`^(?i)(?:dos|drs)://([^/:?]+)/(.+)$`)
)

// Parsed is a normalized DRS URI
type Parsed struct {
	Raw      string
	Host     string
	Path     string
	ObjectID string
	Compact  bool
}

// Resolver resolves raw DRS URIs using a compact-id to hostname table
type Resolver struct {
	fold    cases.Caser
	compact map[string]string
}

// New builds a Resolver. Table keys are case folded once here so lookups
// stay allocation-light per request
func New(compactHosts map[string]string) *Resolver {
	r := &Resolver{
		fold:    cases.Fold(),
		compact: make(map[string]string, len(compactHosts)),
	}
	for id, host := range compactHosts {
		r.compact[r.fold.String(id)] = host
	}
	return r
}

// Parse normalizes raw into (host, path). Compact ids are matched first,
// then literal hostnames. Unknown compact ids and non-matching inputs are
// client errors
func (r *Resolver) Parse(raw string) (Parsed, error) {
	if m := compactRe.FindStringSubmatch(raw); m != nil {
		id, suffix := m[1], m[2]
		host, ok := r.compact[r.fold.String(id)]
		if !ok {
			return Parsed{}, perr.InvalidArgf("unrecognized compact identifier %q in %q", id, raw)
		}
		return Parsed{
			Raw:      raw,
			Host:     host,
			Path:     "/" + suffix,
			ObjectID: suffix,
			Compact:  true,
		}, nil
	}
	if m := hostRe.FindStringSubmatch(raw); m != nil {
		return Parsed{
			Raw:      raw,
			Host:     m[1],
			Path:     "/" + m[2],
			ObjectID: m[2],
		}, nil
	}
	return Parsed{}, perr.InvalidArgf("invalid DRS URI %q", raw)
}
