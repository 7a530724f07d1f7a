package auth

import (
	"fmt"

	"github.com/marmos91/saslgate/internal/logger"
	"github.com/marmos91/saslgate/pkg/metrics"
)

// sessionState tracks where a negotiation is in its lifecycle.
type sessionState int

const (
	stateFresh sessionState = iota
	stateSelected
	stateComplete
	stateFailed
	stateClosed
)

// mechanismFactory builds the strong-auth delegate for one connection.
// It is nil when no Kerberos provider is wired.
type mechanismFactory func() (Mechanism, error)

// Session is the per-connection negotiation state machine. The first
// Evaluate call classifies the client, enforces policy, and binds a
// Mechanism; later calls delegate to it. A Session is not safe for
// concurrent use.
//
// Exactly one terminal outcome (success, failure, or rejection) is recorded
// into the metrics handle over the session's lifetime, no matter how many
// times Evaluate is retried after an error.
type Session struct {
	policy      *Policy
	metrics     *metrics.AuthMetrics
	newKerberos mechanismFactory

	defaultUser string
	userMapping bool

	clientHost string
	forced     *Mode

	state     sessionState
	mode      Mode
	mechanism Mechanism
	cause     error
	recorded  bool
}

// SetClientAddress records the client host used for policy decisions. It
// must be called before the first Evaluate; later calls have no effect on
// a selection already made.
func (s *Session) SetClientAddress(host string) {
	s.clientHost = host
}

// ClientAddress returns the host set via SetClientAddress.
func (s *Session) ClientAddress() string { return s.clientHost }

// Mode returns the selected mode. Only meaningful once a mode has been
// selected; check MechanismName for the pre-selection case.
func (s *Session) Mode() Mode { return s.mode }

// SimpleMode reports whether the session selected the no-credential mode.
func (s *Session) SimpleMode() bool {
	return s.state != stateFresh && s.mode == ModeSimple
}

// MechanismName returns the SASL mechanism in use, or "DUAL-MODE" while the
// session is still undecided.
func (s *Session) MechanismName() string {
	if s.state == stateFresh {
		return "DUAL-MODE"
	}
	return s.mode.String()
}

// Complete reports whether the handshake finished successfully.
func (s *Session) Complete() bool { return s.state == stateComplete }

// AuthorizationID returns the authenticated identity once Complete is true,
// and "" otherwise.
func (s *Session) AuthorizationID() string {
	if s.state != stateComplete || s.mechanism == nil {
		return ""
	}
	return s.mechanism.AuthorizationID()
}

// Evaluate advances the handshake with one client token and returns the
// challenge to send back, or nil when none is needed.
func (s *Session) Evaluate(token []byte) ([]byte, error) {
	switch s.state {
	case stateClosed:
		return nil, ErrSessionClosed
	case stateFailed:
		// Failed is terminal: the session must be discarded and the
		// connection denied. Repeat calls keep surfacing the first failure.
		return nil, s.cause
	}
	if s.mechanism == nil {
		if err := s.selectMode(token); err != nil {
			return nil, err
		}
	}

	challenge, err := s.mechanism.Evaluate(token)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	if s.mechanism.Complete() && s.state != stateComplete {
		s.succeed()
	}
	return challenge, nil
}

// selectMode runs detection and policy for the first token and binds the
// mechanism delegate. Any rejection here is terminal for the session.
func (s *Session) selectMode(token []byte) error {
	mode := DetectMode(token)
	if s.forced != nil {
		mode = *s.forced
	}

	if err := s.policy.Validate(mode, s.clientHost); err != nil {
		s.mode = mode
		s.rejectPolicy(mode, err)
		return err
	}

	switch mode {
	case ModeKerberos:
		if s.newKerberos == nil {
			s.mode = mode
			s.rejectPolicy(mode, ErrKerberosUnavailable)
			return ErrKerberosUnavailable
		}
		mech, err := s.newKerberos()
		if err != nil {
			err = fmt.Errorf("auth: creating kerberos mechanism: %w", err)
			s.mode = mode
			s.rejectPolicy(mode, err)
			return err
		}
		s.mechanism = mech
	default:
		s.mechanism = newSimpleMechanism(s.defaultUser, s.userMapping)
	}

	s.mode = mode
	s.state = stateSelected
	logger.Debug("authentication mode selected",
		logger.KeyMode, mode.String(),
		logger.KeyClientAddr, s.clientHost,
		logger.KeyTokenLen, len(token))
	return nil
}

// Wrap applies the negotiated protection layer to outgoing data.
func (s *Session) Wrap(data []byte) ([]byte, error) {
	if err := s.checkSelected(); err != nil {
		return nil, err
	}
	return s.mechanism.Wrap(data)
}

// Unwrap removes the protection layer from incoming data.
func (s *Session) Unwrap(data []byte) ([]byte, error) {
	if err := s.checkSelected(); err != nil {
		return nil, err
	}
	return s.mechanism.Unwrap(data)
}

func (s *Session) checkSelected() error {
	switch s.state {
	case stateClosed:
		return ErrSessionClosed
	case stateFailed:
		return s.cause
	}
	if s.mechanism == nil {
		return ErrNoModeSelected
	}
	return nil
}

// Close releases the session. The active-connection gauge is decremented
// exactly once regardless of how many times Close is called.
func (s *Session) Close() error {
	if s.state == stateClosed {
		return nil
	}
	var err error
	if s.mechanism != nil {
		err = s.mechanism.Close()
	}
	s.state = stateClosed
	s.metrics.ConnectionClosed()
	return err
}

func (s *Session) succeed() {
	s.state = stateComplete
	if !s.recorded {
		s.recorded = true
		switch s.mode {
		case ModeKerberos:
			s.metrics.RecordKerberosSuccess()
		default:
			s.metrics.RecordSimpleSuccess()
		}
	}
	logger.Info("authentication complete",
		logger.KeyMode, s.mode.String(),
		logger.KeyUser, s.mechanism.AuthorizationID(),
		logger.KeyClientAddr, s.clientHost)
}

func (s *Session) fail(err error) {
	s.state = stateFailed
	s.cause = err
	if !s.recorded {
		s.recorded = true
		switch s.mode {
		case ModeKerberos:
			s.metrics.RecordKerberosFailure()
		default:
			s.metrics.RecordSimpleRejected()
		}
	}
	logger.Warn("authentication failed",
		logger.KeyMode, s.mode.String(),
		logger.KeyClientAddr, s.clientHost,
		logger.KeyError, err.Error())
}

// rejectPolicy records a terminal outcome for a connection that never got a
// mechanism bound: policy denials and provider wiring failures.
func (s *Session) rejectPolicy(mode Mode, err error) {
	s.state = stateFailed
	s.cause = err
	if !s.recorded {
		s.recorded = true
		switch mode {
		case ModeKerberos:
			s.metrics.RecordKerberosFailure()
		default:
			s.metrics.RecordSimpleRejected()
		}
	}
	logger.Warn("authentication rejected",
		logger.KeyMode, mode.String(),
		logger.KeyClientAddr, s.clientHost,
		logger.KeyReason, err.Error())
}
