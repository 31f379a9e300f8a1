package prometheus

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"
)

// ResolverConfig defines the configuration for a push-target resolver.
type ResolverConfig struct {
	// UDPServers are plain DNS servers, e.g. ["1.1.1.1:53", "8.8.8.8:53"].
	UDPServers []string

	// TLSServers are DNS-over-TLS servers, e.g. ["1.1.1.1:853"].
	TLSServers []string

	// Timeout bounds a full lookup. Defaults to 800ms.
	Timeout time.Duration

	// CacheTTL bounds how long resolved addresses are reused.
	// Defaults to 10 minutes.
	CacheTTL time.Duration

	// Optional logger
	Logger *zap.Logger
}

// Resolver resolves push-target hostnames by querying all configured
// servers concurrently and taking the first successful answer, with the
// system resolver as a permanent fallback. Results are cached so steady
// pushing does not hammer the resolvers.
type Resolver struct {
	config ResolverConfig

	mu    sync.Mutex
	cache map[string]resolverEntry

	// systemLookup is replaceable in tests.
	systemLookup func(ctx context.Context, host string) ([]string, error)
}

type resolverEntry struct {
	ips     []string
	expires time.Time
}

// NewResolver creates a resolver.
func NewResolver(config ResolverConfig) *Resolver {
	if config.Timeout <= 0 {
		config.Timeout = 800 * time.Millisecond
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 10 * time.Minute
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return &Resolver{
		config: config,
		cache:  make(map[string]resolverEntry),
		systemLookup: func(ctx context.Context, host string) ([]string, error) {
			netIPs, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
			ips := make([]string, 0, len(netIPs))
			for _, ip := range netIPs {
				ips = append(ips, ip.String())
			}
			return ips, err
		},
	}
}

// Lookup resolves host to one or more addresses. Literal IPs pass through.
func (r *Resolver) Lookup(ctx context.Context, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []string{host}, nil
	}

	r.mu.Lock()
	if entry, ok := r.cache[host]; ok && time.Now().Before(entry.expires) {
		ips := entry.ips
		r.mu.Unlock()
		return ips, nil
	}
	r.mu.Unlock()

	ips, err := r.resolveFastest(ctx, host)
	if err != nil {
		r.config.Logger.Warn("DNS lookup failed",
			zap.String("host", host), zap.Error(err))
		return nil, err
	}

	r.mu.Lock()
	r.cache[host] = resolverEntry{ips: ips, expires: time.Now().Add(r.config.CacheTTL)}
	r.mu.Unlock()
	return ips, nil
}

// Flush drops all cached entries, forcing fresh lookups.
func (r *Resolver) Flush() {
	r.mu.Lock()
	r.cache = make(map[string]resolverEntry)
	r.mu.Unlock()
}

// DialContext dials addr after resolving its host part, trying each
// resolved address in order. It fits http.Transport.DialContext.
func (r *Resolver) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	var d net.Dialer
	ips, err := r.Lookup(ctx, host)
	if err != nil || len(ips) == 0 {
		// Resolution failed everywhere; let the standard dialer try.
		return d.DialContext(ctx, network, addr)
	}

	var firstErr error
	for _, ip := range ips {
		conn, err := d.DialContext(ctx, network, net.JoinHostPort(ip, port))
		if err == nil {
			return conn, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// resolveFastest queries all configured resolvers concurrently and returns
// the first successful answer.
func (r *Resolver) resolveFastest(ctx context.Context, host string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	attempts := 1 + len(r.config.UDPServers) + len(r.config.TLSServers)

	type result struct {
		ips []string
		err error
	}
	// Buffered to attempts so losing goroutines never block after the
	// winner is taken.
	ch := make(chan result, attempts)

	query := func(resolve func() ([]string, error)) {
		ips, err := resolve()
		ch <- result{ips, err}
	}

	for _, srv := range r.config.UDPServers {
		go query(func() ([]string, error) { return exchangeA(ctx, host, srv, "udp") })
	}
	for _, srv := range r.config.TLSServers {
		go query(func() ([]string, error) { return exchangeA(ctx, host, srv, "tcp-tls") })
	}
	go query(func() ([]string, error) { return r.systemLookup(ctx, host) })

	var firstErr error
	for i := 0; i < attempts; i++ {
		select {
		case res := <-ch:
			if res.err == nil && len(res.ips) > 0 {
				return res.ips, nil
			}
			if firstErr == nil {
				firstErr = res.err
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if firstErr == nil {
		firstErr = fmt.Errorf("no dns result for %q", host)
	}
	return nil, firstErr
}

// exchangeA queries a single server for A records over the given network
// ("udp" or "tcp-tls").
func exchangeA(ctx context.Context, host, server, network string) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), dns.TypeA)
	c := &dns.Client{Net: network, Timeout: 800 * time.Millisecond}
	reply, _, err := c.ExchangeContext(ctx, m, server)
	if err != nil {
		return nil, err
	}
	if reply == nil || reply.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("dns query for %q via %s failed", host, server)
	}
	ips := make([]string, 0, len(reply.Answer))
	for _, answer := range reply.Answer {
		if a, ok := answer.(*dns.A); ok {
			ips = append(ips, a.A.String())
		}
	}
	return ips, nil
}
