package clsag

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/bwesterb/go-ristretto"
	"github.com/dchest/blake2b"
)

const (
	HASH_TO_POINT_DOMAIN_TAG  = "clsag_key_hash_to_point"
	CLSAG_AGG_0_DOMAIN_TAG    = "CLSAG_agg_0"
	CLSAG_AGG_1_DOMAIN_TAG    = "CLSAG_agg_1"
	CLSAG_ROUND_DOMAIN_TAG    = "CLSAG_round"
	CLSAG_MULTISIG_DOMAIN_TAG = "clsag_multisig_transcript"
)

// SigningSecret opens one ring slot: X is the discrete log of the member's
// public key, Z the blinding delta such that commitment - pseudoOut = Z*G.
type SigningSecret struct {
	X *ristretto.Scalar
	Z *ristretto.Scalar
}

// RingCLSAG is the wire form of a signature. Recomputing the challenge chain
// over the ring with Responses and the two images must return CZero exactly.
type RingCLSAG struct {
	CZero          string
	Responses      []string
	KeyImage       string
	AuxiliaryImage string
}

type signatureData struct {
	cZero     *ristretto.Scalar
	responses []*ristretto.Scalar
	keyImage  *ristretto.Point
	auxImage  *ristretto.Point
}

// Sign produces a CLSAG over the ring for the member at realIndex. A ring of
// one member degenerates to a plain Schnorr proof and is accepted.
func Sign(message []byte, ring Ring, realIndex int, secret *SigningSecret, pseudoOut *ristretto.Point) (*RingCLSAG, error) {
	if err := ring.validate(); err != nil {
		return nil, err
	}
	size := len(ring)
	if realIndex < 0 || realIndex >= size {
		return nil, fmt.Errorf("clsag: real index %d out of range for ring size %d: %w", realIndex, size, ErrRingSizeInvalid)
	}
	if secret == nil || secret.X == nil || secret.Z == nil || pseudoOut == nil {
		return nil, ErrInvalidSecret
	}

	// The secrets must actually open the claimed slot: X*G is the member key
	// and Z*G the commitment offset against the pseudo-output.
	var expect ristretto.Point
	expect.ScalarMultBase(secret.X)
	if !bytes.Equal(expect.Bytes(), ring[realIndex].PublicKey.Bytes()) {
		return nil, ErrInvalidSecret
	}
	var offset ristretto.Point
	offset.Sub(ring[realIndex].Commitment, pseudoOut)
	expect.ScalarMultBase(secret.Z)
	if !bytes.Equal(expect.Bytes(), offset.Bytes()) {
		return nil, ErrInvalidSecret
	}

	hp := hashToPoint(ring[realIndex].PublicKey)
	var keyImage, auxImage ristretto.Point
	keyImage.ScalarMult(hp, secret.X)
	auxImage.ScalarMult(hp, secret.Z)

	muP, muC := aggregationCoefficients(ring, &keyImage, &auxImage, pseudoOut)
	aggImage := multiscalarMul([]*ristretto.Scalar{muP, muC}, []*ristretto.Point{&keyImage, &auxImage})
	prefix := roundPrefix(message, ring, pseudoOut)

	c := make([]*ristretto.Scalar, size)
	s := make([]*ristretto.Scalar, size)

	var alpha ristretto.Scalar
	alpha.Rand()
	var L, R ristretto.Point
	L.ScalarMultBase(&alpha)
	R.ScalarMult(hp, &alpha)
	c[(realIndex+1)%size] = roundChallenge(prefix, &L, &R)

	// Walk the decoys forward from the real index. Every iteration performs
	// the same operations, so the output reveals nothing about where the
	// chain was closed.
	for n := 1; n < size; n++ {
		i := (realIndex + n) % size
		var si ristretto.Scalar
		s[i] = si.Rand()
		w := aggregateMember(ring[i], pseudoOut, muP, muC)

		var l0, l1 ristretto.Point
		L.Add(l0.ScalarMultBase(s[i]), l1.ScalarMult(w, c[i]))
		var r0, r1 ristretto.Point
		R.Add(r0.ScalarMult(hashToPoint(ring[i].PublicKey), s[i]), r1.ScalarMult(aggImage, c[i]))
		c[(i+1)%size] = roundChallenge(prefix, &L, &R)
	}

	// Close the loop: s[l] = alpha - c[l]*(muP*X + muC*Z).
	var aggSecret, t0 ristretto.Scalar
	aggSecret.Mul(muP, secret.X)
	t0.Mul(muC, secret.Z)
	aggSecret.Add(&aggSecret, &t0)
	t0.Mul(c[realIndex], &aggSecret)
	var sl ristretto.Scalar
	sl.Sub(&alpha, &t0)
	s[realIndex] = &sl
	wipeScalar(&alpha)
	wipeScalar(&aggSecret)

	responses := make([]string, size)
	for i, si := range s {
		responses[i] = hex.EncodeToString(si.Bytes())
	}
	return &RingCLSAG{
		CZero:          hex.EncodeToString(c[0].Bytes()),
		Responses:      responses,
		KeyImage:       hex.EncodeToString(keyImage.Bytes()),
		AuxiliaryImage: hex.EncodeToString(auxImage.Bytes()),
	}, nil
}

// Verify reports whether sig is a valid signature over message by some
// member of the ring whose commitment balances against pseudoOut. Malformed
// input is a verification failure, never a panic.
func Verify(message []byte, ring Ring, sig *RingCLSAG, pseudoOut *ristretto.Point) bool {
	if ring.validate() != nil || pseudoOut == nil {
		return false
	}
	data, err := sig.decode(len(ring))
	if err != nil {
		return false
	}

	muP, muC := aggregationCoefficients(ring, data.keyImage, data.auxImage, pseudoOut)
	aggImage := multiscalarMul([]*ristretto.Scalar{muP, muC}, []*ristretto.Point{data.keyImage, data.auxImage})
	prefix := roundPrefix(message, ring, pseudoOut)

	c := data.cZero
	for i := 0; i < len(ring); i++ {
		w := aggregateMember(ring[i], pseudoOut, muP, muC)

		var L, l0, l1 ristretto.Point
		L.Add(l0.ScalarMultBase(data.responses[i]), l1.ScalarMult(w, c))
		var R, r0, r1 ristretto.Point
		R.Add(r0.ScalarMult(hashToPoint(ring[i].PublicKey), data.responses[i]), r1.ScalarMult(aggImage, c))
		c = roundChallenge(prefix, &L, &R)
	}
	return bytes.Equal(c.Bytes(), data.cZero.Bytes())
}

// Validate performs the fail-fast structural checks on a signature for the
// given ring size, without running the challenge chain.
func (sig *RingCLSAG) Validate(ringSize int) error {
	_, err := sig.decode(ringSize)
	return err
}

func (sig *RingCLSAG) decode(ringSize int) (*signatureData, error) {
	if sig == nil {
		return nil, ErrMalformedEncoding
	}
	if ringSize < 1 || len(sig.Responses) != ringSize {
		return nil, ErrRingSizeInvalid
	}
	cZero, err := decodeScalar(sig.CZero)
	if err != nil {
		return nil, err
	}
	responses := make([]*ristretto.Scalar, ringSize)
	for i, raw := range sig.Responses {
		if responses[i], err = decodeScalar(raw); err != nil {
			return nil, err
		}
	}
	keyImage, err := decodePoint(sig.KeyImage)
	if err != nil {
		return nil, err
	}
	if isIdentity(keyImage) {
		return nil, ErrMalformedEncoding
	}
	auxImage, err := decodePoint(sig.AuxiliaryImage)
	if err != nil {
		return nil, err
	}
	return &signatureData{
		cZero:     cZero,
		responses: responses,
		keyImage:  keyImage,
		auxImage:  auxImage,
	}, nil
}

// roundPrefix is the static portion of every challenge hash: the domain tag,
// the full ring, the pseudo-output and the message.
func roundPrefix(message []byte, ring Ring, pseudoOut *ristretto.Point) []byte {
	buf := make([]byte, 0, len(CLSAG_ROUND_DOMAIN_TAG)+64*len(ring)+32+len(message))
	buf = append(buf, []byte(CLSAG_ROUND_DOMAIN_TAG)...)
	for _, entry := range ring {
		buf = append(buf, entry.PublicKey.Bytes()...)
	}
	for _, entry := range ring {
		buf = append(buf, entry.Commitment.Bytes()...)
	}
	buf = append(buf, pseudoOut.Bytes()...)
	buf = append(buf, message...)
	return buf
}

func roundChallenge(prefix []byte, L, R *ristretto.Point) *ristretto.Scalar {
	hash := blake2b.New512()
	hash.Write(prefix)
	hash.Write(L.Bytes())
	hash.Write(R.Bytes())

	var key [64]byte
	copy(key[:], hash.Sum(nil))

	var s ristretto.Scalar
	return s.SetReduced(&key)
}
