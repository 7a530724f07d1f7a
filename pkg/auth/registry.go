package auth

import (
	"strings"
	"sync"

	"github.com/marmos91/saslgate/internal/logger"
	"github.com/marmos91/saslgate/pkg/config"
	"github.com/marmos91/saslgate/pkg/metrics"
)

// supportedMechanisms lists every SASL mechanism name this negotiator
// accepts, including the synthetic DUAL-MODE entry used when the mechanism
// is decided by payload inspection instead of advertisement.
var supportedMechanisms = []string{"GSSAPI", "PLAIN", "SIMPLE", "ANONYMOUS", "DUAL-MODE"}

// KerberosFactory builds one strong-auth delegate per connection. It is
// typically kerberos.Provider.NewMechanism.
type KerberosFactory func() (Mechanism, error)

// Registry is the process-level entry point: it holds the validated
// configuration, the shared metrics handle, and the Kerberos wiring, and
// mints one Session per incoming connection. A Registry is safe for
// concurrent use.
type Registry struct {
	mu          sync.Mutex
	initialized bool

	cfg      config.AuthConfig
	policy   *Policy
	metrics  *metrics.AuthMetrics
	kerberos KerberosFactory
}

// NewRegistry builds a Registry bound to the given metrics handle. A nil
// handle disables recording without changing any behavior.
func NewRegistry(m *metrics.AuthMetrics) *Registry {
	return &Registry{metrics: m}
}

// Initialize validates the configuration and wires the Kerberos factory.
// It is idempotent: the first successful call wins and later calls are
// no-ops.
// A nil factory is allowed; GSSAPI connections then fail with
// ErrKerberosUnavailable.
func (r *Registry) Initialize(cfg config.AuthConfig, kerberos KerberosFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return nil
	}
	if cfg.Enabled && !cfg.AllowKerberos && !cfg.AllowSimple {
		return config.ErrNoModeAllowed
	}

	r.cfg = cfg
	r.policy = NewPolicy(cfg)
	r.kerberos = kerberos
	r.initialized = true

	logger.Info("authentication negotiator initialized",
		"enabled", cfg.Enabled,
		"allow_kerberos", cfg.AllowKerberos,
		"allow_simple", cfg.AllowSimple,
		"allowed_hosts", len(cfg.SimpleAllowedHosts))
	return nil
}

// Initialized reports whether Initialize has completed.
func (r *Registry) Initialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialized
}

// Enabled reports whether authentication is switched on in the active
// configuration.
func (r *Registry) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialized && r.cfg.Enabled
}

// Metrics returns the shared metrics handle.
func (r *Registry) Metrics() *metrics.AuthMetrics { return r.metrics }

// NewSession mints a dual-mode session for one connection. The mode is
// decided by the first Evaluate call.
func (r *Registry) NewSession() (*Session, error) {
	return r.newSession(nil)
}

// NewSessionFor mints a session for a client that advertised its SASL
// mechanism up front, skipping payload detection. DUAL-MODE behaves like
// NewSession.
func (r *Registry) NewSessionFor(mechanism string) (*Session, error) {
	name := strings.ToUpper(strings.TrimSpace(mechanism))
	if !Supported(name) {
		return nil, ErrUnsupportedMechanism
	}
	if name == "DUAL-MODE" {
		return r.newSession(nil)
	}
	mode := ModeFromMechanism(name)
	return r.newSession(&mode)
}

func (r *Registry) newSession(forced *Mode) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return nil, ErrNotInitialized
	}
	if !r.cfg.Enabled {
		return nil, ErrNotEnabled
	}

	r.metrics.ConnectionOpened()
	s := &Session{
		policy:      r.policy,
		metrics:     r.metrics,
		defaultUser: r.cfg.SimpleDefaultUser,
		userMapping: r.cfg.SimpleUserMapping,
		forced:      forced,
	}
	if r.kerberos != nil {
		s.newKerberos = mechanismFactory(r.kerberos)
	}
	return s, nil
}

// Reset clears the initialized state and zeroes the outcome counters.
// Intended for tests that re-initialize with a different configuration.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initialized = false
	r.cfg = config.AuthConfig{}
	r.policy = nil
	r.kerberos = nil
	r.metrics.Reset()
}

// SupportedMechanisms returns the accepted SASL mechanism names.
func SupportedMechanisms() []string {
	out := make([]string, len(supportedMechanisms))
	copy(out, supportedMechanisms)
	return out
}

// Supported reports whether the given mechanism name is one this
// negotiator handles. The comparison is case-insensitive.
func Supported(mechanism string) bool {
	name := strings.ToUpper(strings.TrimSpace(mechanism))
	for _, m := range supportedMechanisms {
		if m == name {
			return true
		}
	}
	return false
}
