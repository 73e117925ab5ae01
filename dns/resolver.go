// Package dns resolves SMTP targets: MX records for a mail domain and
// address records for a host. It is used by the CLI's target-discovery
// mode, where the operator names a domain instead of a mail server.
package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

var (
	ErrNotFound = errors.New("dns: no records found")
	ErrServFail = errors.New("dns: server failure")
	ErrRefused  = errors.New("dns: query refused")
)

// Resolver is the lookup surface target discovery needs. MockResolver
// implements it for tests.
type Resolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
	LookupIP(ctx context.Context, host string) ([]net.IP, error)
}

// Config controls the MX resolver.
type Config struct {
	// Nameservers to query (e.g., "8.8.8.8:53"). If empty, the system
	// resolvers from /etc/resolv.conf are used, falling back to public
	// DNS.
	Nameservers []string

	// Timeout for individual DNS queries. Default is 5 seconds.
	Timeout time.Duration

	// Retries for failed queries. Default is 2.
	Retries int
}

// MXResolver resolves via github.com/miekg/dns.
type MXResolver struct {
	config Config
	client *mdns.Client
}

// NewResolver creates an MXResolver.
func NewResolver(config Config) *MXResolver {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Retries == 0 {
		config.Retries = 2
	}
	if len(config.Nameservers) == 0 {
		config.Nameservers = systemNameservers()
	}
	return &MXResolver{
		config: config,
		client: &mdns.Client{Timeout: config.Timeout},
	}
}

// systemNameservers reads resolv.conf, falling back to public DNS.
func systemNameservers() []string {
	config, err := mdns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(config.Servers) == 0 {
		return []string{"8.8.8.8:53", "1.1.1.1:53"}
	}

	servers := make([]string, 0, len(config.Servers))
	for _, s := range config.Servers {
		if !strings.Contains(s, ":") {
			s = s + ":53"
		}
		servers = append(servers, s)
	}
	return servers
}

func fqdn(name string) string {
	if !strings.HasSuffix(name, ".") {
		return name + "."
	}
	return name
}

// query performs a DNS query with retries across the configured
// nameservers.
func (r *MXResolver) query(ctx context.Context, name string, qtype uint16) (*mdns.Msg, error) {
	m := new(mdns.Msg)
	m.SetQuestion(fqdn(name), qtype)
	m.RecursionDesired = true

	var lastErr error
	for i := 0; i <= r.config.Retries; i++ {
		for _, server := range r.config.Nameservers {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			resp, _, err := r.client.ExchangeContext(ctx, m, server)
			if err != nil {
				lastErr = fmt.Errorf("dns query failed: %w", err)
				continue
			}

			switch resp.Rcode {
			case mdns.RcodeSuccess:
				return resp, nil
			case mdns.RcodeNameError: // NXDOMAIN
				return nil, ErrNotFound
			case mdns.RcodeServerFailure:
				lastErr = ErrServFail
				continue
			case mdns.RcodeRefused:
				lastErr = ErrRefused
				continue
			default:
				lastErr = fmt.Errorf("dns: unexpected rcode %d", resp.Rcode)
				continue
			}
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrServFail
}

// LookupMX retrieves MX records for the given domain, sorted by
// preference.
func (r *MXResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	resp, err := r.query(ctx, domain, mdns.TypeMX)
	if err != nil {
		return nil, err
	}

	var records []*net.MX
	for _, rr := range resp.Answer {
		if mx, ok := rr.(*mdns.MX); ok {
			records = append(records, &net.MX{
				Host: mx.Mx,
				Pref: mx.Preference,
			})
		}
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Pref < records[j].Pref
	})
	return records, nil
}

// LookupIP retrieves A and AAAA records for the given host.
func (r *MXResolver) LookupIP(ctx context.Context, host string) ([]net.IP, error) {
	var ips []net.IP
	var lastErr error

	for _, qtype := range []uint16{mdns.TypeA, mdns.TypeAAAA} {
		resp, err := r.query(ctx, host, qtype)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				lastErr = err
			}
			continue
		}
		for _, rr := range resp.Answer {
			switch a := rr.(type) {
			case *mdns.A:
				ips = append(ips, a.A)
			case *mdns.AAAA:
				ips = append(ips, a.AAAA)
			}
		}
	}

	if len(ips) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, ErrNotFound
	}
	return ips, nil
}

// BestMX returns the most-preferred mail exchanger host for a domain,
// without the trailing dot. When the domain publishes no MX records but
// has an address record, the domain itself is returned (the RFC 5321
// implicit MX rule).
func BestMX(ctx context.Context, r Resolver, domain string) (string, error) {
	records, err := r.LookupMX(ctx, domain)
	if err == nil && len(records) > 0 {
		return strings.TrimSuffix(records[0].Host, "."), nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}

	// Implicit MX: fall back to the domain's own address records.
	if _, ipErr := r.LookupIP(ctx, domain); ipErr == nil {
		return domain, nil
	}
	return "", fmt.Errorf("dns: no mail exchanger for %s: %w", domain, ErrNotFound)
}
