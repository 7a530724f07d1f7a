package kerberos

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/jcmturner/gokrb5/v8/crypto"
	"github.com/jcmturner/gokrb5/v8/gssapi"
	"github.com/jcmturner/gokrb5/v8/types"
)

// RFC 3961 key usage numbers for RFC 4121 per-message tokens.
const (
	keyUsageAcceptorSeal  uint32 = 22
	keyUsageAcceptorSign  uint32 = 23
	keyUsageInitiatorSeal uint32 = 24
	keyUsageInitiatorSign uint32 = 25
)

// Wrap token constants per RFC 4121 section 4.2.6.2.
const (
	wrapTokenHdrLen = 16

	wrapFlagSentByAcceptor = 0x01
	wrapFlagSealed         = 0x02
	wrapFlagAcceptorSubkey = 0x04
)

// sealMessage builds a sealed acceptor Wrap token around plaintext.
//
// RFC 4121 section 4.2.4: wire format is a 16-byte plaintext header
// followed by encrypt(plaintext | header_copy), where the header copy has
// EC and RRC zeroed. No filler is used (EC=0) since the encryption itself
// provides integrity.
func sealMessage(key types.EncryptionKey, seqNum uint64, acceptorSubkey bool, plaintext []byte) ([]byte, error) {
	encType, err := crypto.GetEtype(key.KeyType)
	if err != nil {
		return nil, fmt.Errorf("get encryption type: %w", err)
	}

	flags := byte(wrapFlagSentByAcceptor | wrapFlagSealed)
	if acceptorSubkey {
		flags |= wrapFlagAcceptorSubkey
	}

	header := make([]byte, wrapTokenHdrLen)
	header[0] = 0x05
	header[1] = 0x04
	header[2] = flags
	header[3] = 0xFF
	binary.BigEndian.PutUint16(header[4:6], 0) // EC
	binary.BigEndian.PutUint16(header[6:8], 0) // RRC
	binary.BigEndian.PutUint64(header[8:16], seqNum)

	toEncrypt := make([]byte, len(plaintext)+wrapTokenHdrLen)
	copy(toEncrypt, plaintext)
	copy(toEncrypt[len(plaintext):], header)

	_, ciphertext, err := encType.EncryptMessage(key.KeyValue, toEncrypt, keyUsageAcceptorSeal)
	if err != nil {
		return nil, fmt.Errorf("encrypt wrap token: %w", err)
	}

	token := make([]byte, wrapTokenHdrLen+len(ciphertext))
	copy(token, header)
	copy(token[wrapTokenHdrLen:], ciphertext)
	return token, nil
}

// unsealMessage verifies an initiator Wrap token and returns its payload.
// Sealed tokens are decrypted manually since gokrb5's WrapToken does not
// implement the sealed case; non-sealed tokens go through gokrb5's
// integrity verification.
func unsealMessage(key types.EncryptionKey, token []byte) ([]byte, error) {
	if len(token) < wrapTokenHdrLen {
		return nil, fmt.Errorf("wrap token too short: %d bytes", len(token))
	}
	if token[0] != 0x05 || token[1] != 0x04 {
		return nil, fmt.Errorf("invalid wrap token ID: 0x%02x%02x", token[0], token[1])
	}

	flags := token[2]
	ec := binary.BigEndian.Uint16(token[4:6])
	rrc := binary.BigEndian.Uint16(token[6:8])
	sndSeqNum := binary.BigEndian.Uint64(token[8:16])

	if flags&wrapFlagSentByAcceptor != 0 {
		return nil, fmt.Errorf("unexpected acceptor flag: expecting token from initiator")
	}

	if flags&wrapFlagSealed == 0 {
		var wrapToken gssapi.WrapToken
		if err := wrapToken.Unmarshal(token, false); err != nil {
			return nil, fmt.Errorf("unmarshal wrap token: %w", err)
		}
		ok, err := wrapToken.Verify(key, keyUsageInitiatorSeal)
		if err != nil {
			return nil, fmt.Errorf("verify wrap token: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("wrap token verification failed")
		}
		return wrapToken.Payload, nil
	}

	ciphertext := token[wrapTokenHdrLen:]
	if rrc > 0 && len(ciphertext) > 0 {
		ciphertext = rotateLeft(ciphertext, int(rrc))
	}

	decrypted, err := crypto.DecryptMessage(ciphertext, key, keyUsageInitiatorSeal)
	if err != nil {
		return nil, fmt.Errorf("decrypt wrap token: %w", err)
	}
	if len(decrypted) < wrapTokenHdrLen {
		return nil, fmt.Errorf("decrypted data too short for header: %d bytes", len(decrypted))
	}

	// The last 16 bytes are the header copy with EC and RRC zeroed. Check
	// the fields that must match the plaintext header.
	headerCopy := decrypted[len(decrypted)-wrapTokenHdrLen:]
	if !bytes.Equal(headerCopy[:2], token[:2]) {
		return nil, fmt.Errorf("header copy token ID mismatch")
	}
	if headerCopy[2] != flags {
		return nil, fmt.Errorf("header copy flags mismatch: got 0x%02x, expected 0x%02x", headerCopy[2], flags)
	}
	if copySeqNum := binary.BigEndian.Uint64(headerCopy[8:16]); copySeqNum != sndSeqNum {
		return nil, fmt.Errorf("header copy seq num mismatch: got %d, expected %d", copySeqNum, sndSeqNum)
	}

	// For sealed tokens EC is the filler size between payload and header
	// copy.
	plaintextEnd := len(decrypted) - wrapTokenHdrLen - int(ec)
	if plaintextEnd < 0 {
		return nil, fmt.Errorf("invalid EC value %d", ec)
	}
	return decrypted[:plaintextEnd], nil
}

// rotateLeft undoes the sender's right rotation of the encrypted portion.
func rotateLeft(data []byte, n int) []byte {
	if len(data) == 0 || n <= 0 {
		return data
	}
	n = n % len(data)
	if n == 0 {
		return data
	}
	result := make([]byte, len(data))
	copy(result, data[n:])
	copy(result[len(data)-n:], data[:n])
	return result
}
