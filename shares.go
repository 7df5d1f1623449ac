package clsag

import (
	"fmt"

	"github.com/bwesterb/go-ristretto"
)

// KeyShare is one participant's Shamir share of a spend key.
type KeyShare struct {
	ID       uint32
	Secret   *ristretto.Scalar
	Public   *ristretto.Point
	GroupKey *ristretto.Point
}

// DealShares splits secret into total shares with the given reconstruction
// threshold, trusted-dealer style. Participant identifiers are 1..total.
func DealShares(secret *ristretto.Scalar, threshold, total int) ([]*KeyShare, error) {
	if threshold < 1 || total < threshold {
		return nil, fmt.Errorf("clsag: invalid threshold %d of %d", threshold, total)
	}
	if secret == nil {
		return nil, ErrInvalidSecret
	}

	coeffs := make([]*ristretto.Scalar, threshold)
	var constant ristretto.Scalar
	constant.SetZero()
	coeffs[0] = constant.Add(&constant, secret)
	for i := 1; i < threshold; i++ {
		var c ristretto.Scalar
		coeffs[i] = c.Rand()
	}

	var groupKey ristretto.Point
	groupKey.ScalarMultBase(secret)

	shares := make([]*KeyShare, total)
	for i := range shares {
		id := uint32(i + 1)
		value := evalPolynomial(coeffs, uint32ToScalar(id))
		var public ristretto.Point
		public.ScalarMultBase(value)
		shares[i] = &KeyShare{
			ID:       id,
			Secret:   value,
			Public:   &public,
			GroupKey: &groupKey,
		}
	}
	for _, c := range coeffs {
		wipeScalar(c)
	}
	return shares, nil
}

func evalPolynomial(coeffs []*ristretto.Scalar, x *ristretto.Scalar) *ristretto.Scalar {
	var result ristretto.Scalar
	result.SetZero()
	result.Add(&result, coeffs[len(coeffs)-1])
	for i := len(coeffs) - 2; i >= 0; i-- {
		result.Mul(&result, x)
		result.Add(&result, coeffs[i])
	}
	return &result
}

// lagrangeCoefficient evaluates participant id's Lagrange basis polynomial
// at zero over the signer set ids.
func lagrangeCoefficient(id uint32, ids []uint32) *ristretto.Scalar {
	var num, den ristretto.Scalar
	num.SetOne()
	den.SetOne()
	xi := uint32ToScalar(id)
	for _, other := range ids {
		if other == id {
			continue
		}
		xj := uint32ToScalar(other)
		num.Mul(&num, xj)
		var diff ristretto.Scalar
		diff.Sub(xj, xi)
		den.Mul(&den, &diff)
	}
	var inv ristretto.Scalar
	inv.Inverse(&den)
	var out ristretto.Scalar
	return out.Mul(&num, &inv)
}
