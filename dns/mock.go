package dns

import (
	"context"
	"net"
	"slices"
)

// MockResolver is a Resolver for tests. Keys are domain names without a
// trailing dot.
type MockResolver struct {
	MX map[string][]*net.MX
	A  map[string][]string

	// Fail lists names whose lookups return a temporary error.
	Fail []string
}

var _ Resolver = MockResolver{}

// LookupMX returns the configured MX records.
func (r MockResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if slices.Contains(r.Fail, domain) {
		return nil, ErrServFail
	}
	records, ok := r.MX[domain]
	if !ok || len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}

// LookupIP returns the configured address records.
func (r MockResolver) LookupIP(ctx context.Context, host string) ([]net.IP, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if slices.Contains(r.Fail, host) {
		return nil, ErrServFail
	}
	addrs, ok := r.A[host]
	if !ok || len(addrs) == 0 {
		return nil, ErrNotFound
	}
	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		ips = append(ips, net.ParseIP(a))
	}
	return ips, nil
}
