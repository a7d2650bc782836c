package config

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"go4.org/netipx"

	"ircnames/util"
)

// Target is one IRC server endpoint.
type Target struct {
	Host string
	Port int
	TLS  bool
}

// Addr returns "host:port", bracketing IPv6 literals.
func (t Target) Addr() string {
	return util.FormatAddr(t.Host, t.Port)
}

func (t Target) String() string {
	if t.TLS {
		return t.Addr() + " (tls)"
	}
	return t.Addr()
}

// ParseTarget expands one command-line target.  spec may be a host, an
// IP literal, host:port, [v6]:port or a CIDR prefix.  Entries without a
// port produce one Target per port in ports.
func ParseTarget(spec string, ports []int, tls bool) ([]Target, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty target")
	}

	if strings.Contains(spec, "/") {
		hosts, err := ExpandCIDR(spec)
		if err != nil {
			return nil, err
		}
		out := make([]Target, 0, len(hosts)*len(ports))
		for _, h := range hosts {
			for _, p := range ports {
				out = append(out, Target{Host: h, Port: p, TLS: tls})
			}
		}
		return out, nil
	}

	if host, portStr, err := net.SplitHostPort(spec); err == nil {
		if host == "" {
			return nil, fmt.Errorf("target %q: missing host", spec)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("target %q: invalid port %q", spec, portStr)
		}
		return []Target{{Host: host, Port: port, TLS: tls}}, nil
	}

	host := strings.TrimSuffix(strings.TrimPrefix(spec, "["), "]")
	if host == "" {
		return nil, fmt.Errorf("target %q: missing host", spec)
	}
	out := make([]Target, 0, len(ports))
	for _, p := range ports {
		out = append(out, Target{Host: host, Port: p, TLS: tls})
	}
	return out, nil
}

// ExpandCIDR returns every address in prefix, network and broadcast
// addresses included.  Prefixes larger than MaxCIDRAddresses are
// rejected.
func ExpandCIDR(prefix string) ([]string, error) {
	p, err := netip.ParsePrefix(prefix)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR %q: %w", prefix, err)
	}
	p = p.Masked()
	if hostBits := p.Addr().BitLen() - p.Bits(); hostBits > 16 {
		return nil, fmt.Errorf("CIDR %s expands to more than %d addresses", p, MaxCIDRAddresses)
	}

	r := netipx.RangeOfPrefix(p)
	var out []string
	for a := r.From(); a.IsValid() && a.Compare(r.To()) <= 0; a = a.Next() {
		out = append(out, a.String())
	}
	return out, nil
}

// ExpandTargets parses every spec and returns the de-duplicated union
// in first-seen order.
func ExpandTargets(specs []string, ports []int, tls bool) ([]Target, error) {
	var all []Target
	for _, spec := range specs {
		ts, err := ParseTarget(spec, ports, tls)
		if err != nil {
			return nil, err
		}
		all = append(all, ts...)
	}
	return Dedupe(all), nil
}

// Dedupe removes repeated targets, keeping the first occurrence.
func Dedupe(targets []Target) []Target {
	seen := make(map[Target]struct{}, len(targets))
	out := targets[:0:0]
	for _, t := range targets {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
