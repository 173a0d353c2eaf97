package drsuri

import (
	"testing"

	perr "drsgate/internal/platform/errors"
)

func testResolver() *Resolver {
	return New(map[string]string{
		"dg.anv0": "staging.theanvil.io",
		"dg.4503": "gen3.biodatacatalyst.nhlbi.nih.gov",
	})
}

func TestParseCompactAndHostnameAgree(t *testing.T) {
	r := testResolver()

	a, err := r.Parse("drs://dg.anv0:v1_abc_def")
	if err != nil {
		t.Fatalf("compact parse: %v", err)
	}
	b, err := r.Parse("drs://staging.theanvil.io/v1_abc_def")
	if err != nil {
		t.Fatalf("hostname parse: %v", err)
	}
	if a.Host != b.Host || a.Path != b.Path {
		t.Fatalf("compact and hostname forms disagree: %+v vs %+v", a, b)
	}
	if a.Host != "staging.theanvil.io" || a.Path != "/v1_abc_def" {
		t.Fatalf("normalized = %+v", a)
	}
	if !a.Compact || b.Compact {
		t.Fatalf("compact flags: %v %v", a.Compact, b.Compact)
	}
}

func TestParseCompactCaseInsensitive(t *testing.T) {
	r := testResolver()

	lower, err := r.Parse("drs://dg.anv0:obj")
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	upper, err := r.Parse("DRS://DG.ANV0:obj")
	if err != nil {
		t.Fatalf("upper: %v", err)
	}
	if lower.Host != upper.Host || lower.Path != upper.Path {
		t.Fatalf("case should not matter: %+v vs %+v", lower, upper)
	}
}

func TestParseCompactSlashDelimiter(t *testing.T) {
	r := testResolver()

	got, err := r.Parse("drs://dg.4503/0027045b-9ed6-45af-a68e-f55037b5184c")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Host != "gen3.biodatacatalyst.nhlbi.nih.gov" {
		t.Fatalf("host = %q", got.Host)
	}
	if got.ObjectID != "0027045b-9ed6-45af-a68e-f55037b5184c" {
		t.Fatalf("object id = %q", got.ObjectID)
	}
}

func TestParseLegacyDosScheme(t *testing.T) {
	r := testResolver()

	got, err := r.Parse("dos://example.org/abc")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Host != "example.org" || got.Path != "/abc" {
		t.Fatalf("parsed = %+v", got)
	}
}

func TestParseUnknownCompactID(t *testing.T) {
	r := testResolver()

	_, err := r.Parse("drs://dg.zzzz:obj")
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
}

func TestParseMalformed(t *testing.T) {
	r := testResolver()

	for _, raw := range []string{
		"",
		"drs://",
		"drs://hostonly",
		"http://example.org/abc",
		"drs:example.org/abc",
		"drs://example.org/",
	} {
		if _, err := r.Parse(raw); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Fatalf("%q: want invalid argument, got %v", raw, err)
		}
	}
}
