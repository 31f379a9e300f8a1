package prometheus

import (
	"context"
	"errors"
	"testing"
)

func TestResolverCachesLookups(t *testing.T) {
	r := NewResolver(ResolverConfig{})
	calls := 0
	r.systemLookup = func(ctx context.Context, host string) ([]string, error) {
		calls++
		return []string{"10.0.0.1"}, nil
	}

	ips, err := r.Lookup(context.Background(), "example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(ips) != 1 || ips[0] != "10.0.0.1" {
		t.Errorf("ips = %v, want [10.0.0.1]", ips)
	}

	if _, err := r.Lookup(context.Background(), "example.com"); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("lookup calls = %d, want 1 (second hit should be cached)", calls)
	}

	r.Flush()
	if _, err := r.Lookup(context.Background(), "example.com"); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("lookup calls after flush = %d, want 2", calls)
	}
}

func TestResolverLiteralIPPassthrough(t *testing.T) {
	r := NewResolver(ResolverConfig{})
	r.systemLookup = func(ctx context.Context, host string) ([]string, error) {
		t.Fatalf("unexpected lookup for literal IP %q", host)
		return nil, nil
	}

	ips, err := r.Lookup(context.Background(), "192.0.2.10")
	if err != nil {
		t.Fatal(err)
	}
	if len(ips) != 1 || ips[0] != "192.0.2.10" {
		t.Errorf("ips = %v, want [192.0.2.10]", ips)
	}
}

func TestResolverLookupFailure(t *testing.T) {
	r := NewResolver(ResolverConfig{})
	lookupErr := errors.New("nxdomain")
	r.systemLookup = func(ctx context.Context, host string) ([]string, error) {
		return nil, lookupErr
	}

	if _, err := r.Lookup(context.Background(), "missing.invalid"); err == nil {
		t.Error("expected lookup failure")
	}
}
