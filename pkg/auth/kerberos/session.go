package kerberos

import (
	"errors"
	"fmt"

	"github.com/jcmturner/gokrb5/v8/types"
	"github.com/marmos91/saslgate/pkg/auth"
)

// ErrNotEstablished is returned by Wrap/Unwrap before the AP-REQ exchange
// has completed.
var ErrNotEstablished = errors.New("kerberos: security context not established")

// Session is the per-connection GSSAPI acceptor. The handshake is a single
// round trip: the client's AP-REQ is verified against the keytab, and an
// AP-REP is returned when the client required mutual authentication.
// Afterwards Wrap and Unwrap protect messages with the negotiated context
// key.
type Session struct {
	verifier verifier

	established bool
	principal   string
	realm       string
	contextKey  types.EncryptionKey
	subkeyInUse bool
	sendSeqNum  uint64
}

func newSession(v verifier) *Session {
	return &Session{verifier: v}
}

var _ auth.Mechanism = (*Session)(nil)

// Evaluate verifies the client's initial context token. The returned
// challenge is the AP-REP for mutual authentication, or nil when the client
// did not request it. Tokens after establishment are rejected; per-message
// protection goes through Wrap and Unwrap.
func (s *Session) Evaluate(token []byte) ([]byte, error) {
	if s.established {
		return nil, fmt.Errorf("kerberos: context already established")
	}

	verified, err := s.verifier.verifyToken(token)
	if err != nil {
		return nil, fmt.Errorf("kerberos: %w", err)
	}

	s.principal = verified.Principal
	s.realm = verified.Realm
	s.contextKey = verified.ContextKey
	s.subkeyInUse = verified.HasAcceptorSubkey
	s.established = true

	return verified.APRepToken, nil
}

// Complete reports whether the context is established.
func (s *Session) Complete() bool { return s.established }

// AuthorizationID returns the authenticated principal as principal@REALM.
func (s *Session) AuthorizationID() string {
	if !s.established {
		return ""
	}
	if s.realm == "" {
		return s.principal
	}
	return s.principal + "@" + s.realm
}

// Wrap seals outgoing data in an acceptor Wrap token.
func (s *Session) Wrap(data []byte) ([]byte, error) {
	if !s.established {
		return nil, ErrNotEstablished
	}
	s.sendSeqNum++
	return sealMessage(s.contextKey, s.sendSeqNum, s.subkeyInUse, data)
}

// Unwrap verifies and opens an initiator Wrap token.
func (s *Session) Unwrap(data []byte) ([]byte, error) {
	if !s.established {
		return nil, ErrNotEstablished
	}
	return unsealMessage(s.contextKey, data)
}

// Close zeroes the context key material.
func (s *Session) Close() error {
	for i := range s.contextKey.KeyValue {
		s.contextKey.KeyValue[i] = 0
	}
	s.contextKey = types.EncryptionKey{}
	s.established = false
	return nil
}
