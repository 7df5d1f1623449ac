package clsag

import (
	"encoding/binary"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
)

func InitialTranscript(label string) *merlin.Transcript {
	return merlin.NewTranscript(label)
}

func MultisigDomainSep(ringDigest, message []byte, t *merlin.Transcript) *merlin.Transcript {
	appendBytes([]byte("dom-sep"), []byte("clsag multisig v1"), t)
	appendBytes([]byte("ring"), ringDigest, t)
	appendBytes([]byte("message"), message, t)
	return t
}

func appendBytes(field, data []byte, t *merlin.Transcript) {
	t.AppendMessage(field, data)
}

func appendUint32(label string, i uint32, t *merlin.Transcript) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, i)
	appendBytes([]byte(label), buf, t)
}

func AppendPoint(label string, p *ristretto.Point, t *merlin.Transcript) {
	appendBytes([]byte(label), p.Bytes(), t)
}

func ChallengeScalar(label string, t *merlin.Transcript) *ristretto.Scalar {
	data := t.ExtractBytes([]byte(label), 64)
	var dataBytes [64]byte
	copy(dataBytes[:], data)

	var s ristretto.Scalar
	return s.SetReduced(&dataBytes)
}

// bindingFactor derives one participant's binding factor from the ring, the
// message, the full commitment set and the participant identifier, so no
// participant can pick nonces adaptively after seeing the others'.
// Commitments must be in ascending identifier order.
func bindingFactor(ringDigest, message []byte, commitments []*SigningCommitment, id uint32) *ristretto.Scalar {
	t := MultisigDomainSep(ringDigest, message, InitialTranscript(CLSAG_MULTISIG_DOMAIN_TAG))
	for _, c := range commitments {
		appendUint32("id", c.ID, t)
		AppendPoint("D", c.HidingG, t)
		AppendPoint("E", c.BindingG, t)
		AppendPoint("D_hp", c.HidingH, t)
		AppendPoint("E_hp", c.BindingH, t)
		AppendPoint("I", c.KeyImageShare, t)
	}
	appendUint32("signer", id, t)
	return ChallengeScalar("rho", t)
}
