package kerberos

import (
	"fmt"

	"github.com/jcmturner/gokrb5/v8/messages"
	"github.com/jcmturner/gokrb5/v8/service"
	"github.com/jcmturner/gokrb5/v8/types"
	"github.com/marmos91/saslgate/internal/logger"
)

// verifiedContext is the result of a successful AP-REQ verification.
type verifiedContext struct {
	// Principal is the client principal name, e.g. "alice".
	Principal string

	// Realm is the client realm, e.g. "EXAMPLE.COM".
	Realm string

	// ContextKey is the key for subsequent protection operations: the
	// authenticator subkey when the client sent one, otherwise the ticket
	// session key.
	ContextKey types.EncryptionKey

	// APRepToken is the mutual-authentication reply. Empty when the client
	// did not set the mutual-required AP option.
	APRepToken []byte

	// HasAcceptorSubkey is true when the AP-REP echoes a subkey; Wrap
	// tokens then carry the acceptor-subkey flag per RFC 4121.
	HasAcceptorSubkey bool
}

// verifier abstracts AP-REQ verification so sessions can be tested without
// a KDC. The production implementation is krb5Verifier.
type verifier interface {
	verifyToken(gssToken []byte) (*verifiedContext, error)
}

// krb5Verifier verifies AP-REQs against the Provider's keytab using gokrb5.
type krb5Verifier struct {
	provider *Provider
}

func (v *krb5Verifier) verifyToken(gssToken []byte) (*verifiedContext, error) {
	apReqBytes, err := extractAPReq(gssToken)
	if err != nil {
		return nil, fmt.Errorf("extract AP-REQ from GSS token: %w", err)
	}

	var apReq messages.APReq
	if err := apReq.Unmarshal(apReqBytes); err != nil {
		return nil, fmt.Errorf("unmarshal AP-REQ: %w", err)
	}

	settings := service.NewSettings(
		v.provider.Keytab(),
		service.MaxClockSkew(v.provider.MaxClockSkew()),
		service.DecodePAC(false),
		service.KeytabPrincipal(v.provider.ServicePrincipal()),
	)

	ok, _, err := service.VerifyAPREQ(&apReq, settings)
	if err != nil {
		return nil, fmt.Errorf("verify AP-REQ: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("AP-REQ verification failed")
	}

	// AP-Options bit 2 (0x20 in the first byte, MSB numbering) is
	// mutual-required per RFC 4120.
	mutualRequired := len(apReq.APOptions.Bytes) > 0 && apReq.APOptions.Bytes[0]&0x20 != 0

	sessionKey := apReq.Ticket.DecryptedEncPart.Key
	if err := apReq.DecryptAuthenticator(sessionKey); err != nil {
		return nil, fmt.Errorf("decrypt authenticator: %w", err)
	}

	// Per RFC 4120, a subkey in the authenticator replaces the ticket
	// session key for subsequent protection operations.
	contextKey := sessionKey
	if hasSubkey(apReq) {
		contextKey = apReq.Authenticator.SubKey
	}

	// The client principal lives in the decrypted ticket, not the
	// authenticator.
	principal := apReq.Ticket.DecryptedEncPart.CName.PrincipalNameString()
	realm := apReq.Ticket.DecryptedEncPart.CRealm

	// Only send an AP-REP when mutual auth is required. A client that did
	// not ask for it treats an unexpected AP-REP as an error.
	var apRepToken []byte
	var hasAcceptorSubkey bool
	if mutualRequired {
		apRepToken, err = buildAPRep(apReq, sessionKey)
		if err != nil {
			return nil, fmt.Errorf("build AP-REP: %w", err)
		}
		hasAcceptorSubkey = hasSubkey(apReq)
	}

	logger.Debug("ap-req verified",
		logger.KeyPrincipal, principal,
		"realm", realm,
		"mutual_required", mutualRequired,
		"has_subkey", hasSubkey(apReq))

	return &verifiedContext{
		Principal:         principal,
		Realm:             realm,
		ContextKey:        contextKey,
		APRepToken:        apRepToken,
		HasAcceptorSubkey: hasAcceptorSubkey,
	}, nil
}
