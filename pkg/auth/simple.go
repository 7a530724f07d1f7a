package auth

import (
	"bytes"
	"strings"
)

// simpleMechanism accepts legacy no-credential connections. The handshake
// completes on the first token; the only work is deciding which identity to
// attribute the connection to.
type simpleMechanism struct {
	defaultUser string
	userMapping bool

	complete bool
	authzID  string
}

func newSimpleMechanism(defaultUser string, userMapping bool) *simpleMechanism {
	return &simpleMechanism{
		defaultUser: defaultUser,
		userMapping: userMapping,
	}
}

// Evaluate completes the handshake immediately. There is no challenge to
// send back; the returned token is always nil.
func (s *simpleMechanism) Evaluate(token []byte) ([]byte, error) {
	s.authzID = s.extractIdentity(token)
	s.complete = true
	return nil, nil
}

// extractIdentity pulls the claimed username out of a PLAIN-style token:
// the first NUL-separated segment, when mapping is enabled and the segment
// is non-empty. Everything else falls back to the configured default user.
func (s *simpleMechanism) extractIdentity(token []byte) string {
	if s.userMapping && len(token) > 0 {
		segment := token
		if i := bytes.IndexByte(token, 0); i >= 0 {
			segment = token[:i]
		}
		if user := strings.TrimSpace(string(segment)); user != "" {
			return user
		}
	}
	return s.defaultUser
}

func (s *simpleMechanism) Complete() bool { return s.complete }

func (s *simpleMechanism) AuthorizationID() string { return s.authzID }

// Wrap is the identity transform: simple mode negotiates no protection
// layer, but callers still get an owned copy they can mutate.
func (s *simpleMechanism) Wrap(data []byte) ([]byte, error) {
	return bytes.Clone(data), nil
}

func (s *simpleMechanism) Unwrap(data []byte) ([]byte, error) {
	return bytes.Clone(data), nil
}

func (s *simpleMechanism) Close() error {
	s.authzID = ""
	return nil
}
