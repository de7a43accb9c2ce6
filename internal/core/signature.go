package core

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/ZanzyTHEbar/errbuilder-go"
)

// SignatureIssuer returns the 16 hex digit key id that issued a
// detached OpenPGP signature. Armored and binary signatures are both
// accepted. Nothing is verified.
func SignatureIssuer(data []byte) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty signature")
	}
	var reader io.Reader = bytes.NewReader(data)
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("-----BEGIN")) {
		block, err := armor.Decode(bytes.NewReader(data))
		if err != nil {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to decode armored signature").
				WithCause(err)
		}
		reader = block.Body
	}
	pkt, err := packet.Read(reader)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read signature packet").
			WithCause(err)
	}
	sig, ok := pkt.(*packet.Signature)
	if !ok {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unexpected packet %T in signature", pkt))
	}
	if sig.IssuerKeyId != nil {
		return FormatKeyID(*sig.IssuerKeyId), nil
	}
	if n := len(sig.IssuerFingerprint); n >= 8 {
		return strings.ToUpper(fmt.Sprintf("%X", sig.IssuerFingerprint[n-8:])), nil
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("signature carries no issuer")
}

// SignatureIssuerBase64 decodes a base64 signature as stored in a
// database record and returns its issuer.
func SignatureIssuerBase64(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid base64 signature").
			WithCause(err)
	}
	return SignatureIssuer(data)
}

// FormatKeyID renders a 64-bit key id the way keyrings print it.
func FormatKeyID(id uint64) string {
	return fmt.Sprintf("%016X", id)
}
