package providers

import (
	"regexp"
	"strings"

	perr "drsgate/internal/platform/errors"
)

// Registry answers "which provider serves this host" against the loaded
// catalog. Matching is ordered and deterministic
type Registry struct {
	file     File
	patterns []*regexp.Regexp
}

// New compiles the catalog into a Registry
func New(f File) (*Registry, error) {
	if err := validateFile(f); err != nil {
		return nil, err
	}
	r := &Registry{file: f, patterns: make([]*regexp.Regexp, len(f.Providers))}
	for i, p := range f.Providers {
		re, err := regexp.Compile("^(?i:" + p.HostPattern + ")$")
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "provider %s host pattern", p.Name)
		}
		r.patterns[i] = re
	}
	return r, nil
}

// Determine returns the first provider whose host pattern matches host.
// Hosts on retired domains are rejected outright; an unmatched host is a
// client error, not a lookup to retry
func (r *Registry) Determine(host string) (*Provider, error) {
	for _, dom := range r.file.RetiredDomains {
		if host == dom || strings.HasSuffix(host, "."+dom) {
			return nil, perr.InvalidArgf(
				"host %q is part of the retired %s repository and can no longer be resolved", host, dom,
			)
		}
	}
	for i := range r.file.Providers {
		if r.patterns[i].MatchString(host) {
			return &r.file.Providers[i], nil
		}
	}
	return nil, perr.InvalidArgf("no provider serves host %q", host)
}

// CompactHosts returns the compact-id to hostname table
func (r *Registry) CompactHosts() map[string]string { return r.file.CompactIDs }

// Providers returns the catalog entries in declaration order
func (r *Registry) Providers() []Provider { return r.file.Providers }
