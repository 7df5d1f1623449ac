package clsag

import (
	"github.com/bwesterb/go-ristretto"
)

// aggregationCoefficients derives the two scalars that bind the key ring and
// the commitment ring into a single challenge chain. Both hashes commit to
// every ring member, both images and the pseudo-output, so tampering with
// either ring invalidates the aggregate.
func aggregationCoefficients(ring Ring, keyImage, auxImage, pseudoOut *ristretto.Point) (*ristretto.Scalar, *ristretto.Scalar) {
	chunks := make([][]byte, 0, 2*len(ring)+3)
	for _, entry := range ring {
		chunks = append(chunks, entry.PublicKey.Bytes())
	}
	for _, entry := range ring {
		chunks = append(chunks, entry.Commitment.Bytes())
	}
	chunks = append(chunks, keyImage.Bytes(), auxImage.Bytes(), pseudoOut.Bytes())

	muP := hashToScalar(CLSAG_AGG_0_DOMAIN_TAG, chunks...)
	muC := hashToScalar(CLSAG_AGG_1_DOMAIN_TAG, chunks...)
	return muP, muC
}

// aggregateMember computes W[i] = muP*P[i] + muC*(C[i] - pseudoOut).
func aggregateMember(entry *RingEntry, pseudoOut *ristretto.Point, muP, muC *ristretto.Scalar) *ristretto.Point {
	var offset ristretto.Point
	offset.Sub(entry.Commitment, pseudoOut)
	return multiscalarMul([]*ristretto.Scalar{muP, muC}, []*ristretto.Point{entry.PublicKey, &offset})
}
