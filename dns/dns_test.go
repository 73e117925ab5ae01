package dns

import (
	"context"
	"errors"
	"net"
	"testing"
)

func TestBestMXPrefersLowestPreference(t *testing.T) {
	resolver := MockResolver{
		MX: map[string][]*net.MX{
			"example.com": {
				{Host: "mx1.example.com.", Pref: 10},
				{Host: "mx2.example.com.", Pref: 20},
			},
		},
	}

	host, err := BestMX(context.Background(), resolver, "example.com")
	if err != nil {
		t.Fatalf("BestMX failed: %v", err)
	}
	if host != "mx1.example.com" {
		t.Errorf("Expected mx1.example.com, got %s", host)
	}
}

func TestBestMXImplicitMX(t *testing.T) {
	resolver := MockResolver{
		A: map[string][]string{
			"example.com": {"192.0.2.10"},
		},
	}

	host, err := BestMX(context.Background(), resolver, "example.com")
	if err != nil {
		t.Fatalf("BestMX failed: %v", err)
	}
	if host != "example.com" {
		t.Errorf("Expected implicit MX fallback to example.com, got %s", host)
	}
}

func TestBestMXNoRecords(t *testing.T) {
	resolver := MockResolver{}

	_, err := BestMX(context.Background(), resolver, "nomail.example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestBestMXTemporaryFailure(t *testing.T) {
	resolver := MockResolver{
		Fail: []string{"example.com"},
	}

	_, err := BestMX(context.Background(), resolver, "example.com")
	if !errors.Is(err, ErrServFail) {
		t.Errorf("Expected ErrServFail, got %v", err)
	}
}

func TestBestMXCanceledContext(t *testing.T) {
	resolver := MockResolver{
		MX: map[string][]*net.MX{
			"example.com": {{Host: "mx.example.com.", Pref: 10}},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BestMX(ctx, resolver, "example.com")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
