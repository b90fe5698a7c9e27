package safemath

import "math/big"

// maxUint256 is the upper bound of the arithmetic domain, 2^256 - 1.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Add returns x + y, failing with ErrArithmeticOverflow when the sum leaves
// the 256-bit unsigned domain. Operands are not modified.
func Add(x, y *big.Int) (*big.Int, error) {
	if x.Sign() < 0 || y.Sign() < 0 {
		return nil, ErrArithmeticUnderflow
	}

	result := new(big.Int).Add(x, y)
	if result.Cmp(maxUint256) > 0 {
		return nil, ErrArithmeticOverflow
	}

	return result, nil
}

// Sub returns x - y, failing with ErrArithmeticUnderflow when y > x.
func Sub(x, y *big.Int) (*big.Int, error) {
	if x.Sign() < 0 || y.Sign() < 0 {
		return nil, ErrArithmeticUnderflow
	}

	if y.Cmp(x) > 0 {
		return nil, ErrArithmeticUnderflow
	}

	return new(big.Int).Sub(x, y), nil
}

// Mul returns x * y, short-circuiting to zero when x is zero and failing
// with ErrArithmeticOverflow when the product leaves the domain.
func Mul(x, y *big.Int) (*big.Int, error) {
	if x.Sign() < 0 || y.Sign() < 0 {
		return nil, ErrArithmeticUnderflow
	}

	if x.Sign() == 0 {
		return big.NewInt(0), nil
	}

	result := new(big.Int).Mul(x, y)
	if result.Cmp(maxUint256) > 0 {
		return nil, ErrArithmeticOverflow
	}

	return result, nil
}
