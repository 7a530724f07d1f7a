package auth

import (
	"strings"

	"github.com/marmos91/saslgate/pkg/config"
)

// Policy answers allow/deny questions for a negotiation based on the
// immutable auth configuration it was built from. Changing policy at
// runtime means building a new Policy and new sessions; in-flight sessions
// keep the rules they started with.
type Policy struct {
	allowKerberos bool
	allowSimple   bool
	allowedHosts  []string
}

// NewPolicy builds a Policy from the auth configuration. Host patterns are
// trimmed; empty entries and a bare "*" wildcard both collapse to the
// allow-everything set.
func NewPolicy(cfg config.AuthConfig) *Policy {
	p := &Policy{
		allowKerberos: cfg.AllowKerberos,
		allowSimple:   cfg.AllowSimple,
	}
	for _, h := range cfg.SimpleAllowedHosts {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if h == "*" {
			p.allowedHosts = nil
			break
		}
		p.allowedHosts = append(p.allowedHosts, h)
	}
	return p
}

// Validate checks whether a connection from clientHost may proceed in the
// given mode. For simple auth the mechanism toggle is checked before the
// host list so a closed migration window reports ErrSimpleDisabled even for
// hosts that would otherwise match.
func (p *Policy) Validate(mode Mode, clientHost string) error {
	switch mode {
	case ModeKerberos:
		if !p.allowKerberos {
			return ErrKerberosDisabled
		}
		return nil
	case ModeSimple, ModeAnonymous:
		if !p.allowSimple {
			return ErrSimpleDisabled
		}
		if !p.hostAllowed(clientHost) {
			return ErrHostNotAllowed
		}
		return nil
	default:
		return ErrUnknownMode
	}
}

// AllowsKerberos reports whether GSSAPI connections are accepted.
func (p *Policy) AllowsKerberos() bool { return p.allowKerberos }

// AllowsSimple reports whether simple connections are accepted at all,
// before any host check.
func (p *Policy) AllowsSimple() bool { return p.allowSimple }

// hostAllowed matches clientHost against the allow set. An empty set allows
// every host. A connection with no known origin never matches a non-empty
// set. Patterns ending in '*' match by prefix, so "10.0.1.*" covers the
// whole subnet. Matching is case-sensitive.
func (p *Policy) hostAllowed(clientHost string) bool {
	if len(p.allowedHosts) == 0 {
		return true
	}
	host := strings.TrimSpace(clientHost)
	if host == "" {
		return false
	}
	for _, pattern := range p.allowedHosts {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(host, prefix) {
				return true
			}
			continue
		}
		if host == pattern {
			return true
		}
	}
	return false
}
