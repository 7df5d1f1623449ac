package clsag

import (
	"github.com/bwesterb/go-ristretto"
	"github.com/dchest/blake2b"
)

// RingEntry is one candidate spender: a one-time public key and the Pedersen
// commitment to the amount it controls.
type RingEntry struct {
	PublicKey  *ristretto.Point
	Commitment *ristretto.Point
}

// Ring is an ordered set of candidates. Order is significant: it fixes the
// indices used by the challenge chain.
type Ring []*RingEntry

// RingEntryData is the hex wire form of a ring member.
type RingEntryData struct {
	PublicKey  string
	Commitment string
}

// DecodeRing decodes the wire form of a ring, rejecting any member whose key
// or commitment is not a canonical group element.
func DecodeRing(data []*RingEntryData) (Ring, error) {
	if len(data) < 1 {
		return nil, ErrRingSizeInvalid
	}
	ring := make(Ring, len(data))
	for i, entry := range data {
		if entry == nil {
			return nil, ErrMalformedEncoding
		}
		public, err := decodePoint(entry.PublicKey)
		if err != nil {
			return nil, err
		}
		commitment, err := decodePoint(entry.Commitment)
		if err != nil {
			return nil, err
		}
		ring[i] = &RingEntry{PublicKey: public, Commitment: commitment}
	}
	return ring, nil
}

func (ring Ring) validate() error {
	if len(ring) < 1 {
		return ErrRingSizeInvalid
	}
	for _, entry := range ring {
		if entry == nil || entry.PublicKey == nil || entry.Commitment == nil {
			return ErrMalformedEncoding
		}
	}
	return nil
}

// digest is a compact binding of the ring and pseudo-output, used by the
// multisig transcript.
func (ring Ring) digest(pseudoOut *ristretto.Point) []byte {
	hash := blake2b.New256()
	for _, entry := range ring {
		hash.Write(entry.PublicKey.Bytes())
		hash.Write(entry.Commitment.Bytes())
	}
	hash.Write(pseudoOut.Bytes())
	return hash.Sum(nil)
}
