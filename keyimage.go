package clsag

import (
	"github.com/bwesterb/go-ristretto"
)

// DeriveKeyImage computes I = x*Hp(P), the linkability tag for the one-time
// key P. It is deterministic in x, so two signatures by the same key carry
// the same image; uniqueness tracking is the caller's responsibility.
func DeriveKeyImage(private *ristretto.Scalar, public *ristretto.Point) (*ristretto.Point, error) {
	if private == nil || public == nil || isIdentity(public) {
		return nil, ErrMalformedEncoding
	}
	var image ristretto.Point
	return image.ScalarMult(hashToPoint(public), private), nil
}

// deriveAuxiliaryImage computes D = z*Hp(P), proving knowledge of the
// blinding delta between the signer's commitment and the pseudo-output.
func deriveAuxiliaryImage(mask *ristretto.Scalar, public *ristretto.Point) *ristretto.Point {
	var image ristretto.Point
	return image.ScalarMult(hashToPoint(public), mask)
}
