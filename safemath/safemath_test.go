package safemath_test

import (
	"math/big"
	"testing"

	"github.com/meridianlabs/mrd-sale-contract/safemath"
	"github.com/stretchr/testify/require"
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

func TestAdd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		x           *big.Int
		y           *big.Int
		expected    *big.Int
		expectedErr error
	}{
		{
			name:     "Success - small operands",
			x:        big.NewInt(2),
			y:        big.NewInt(3),
			expected: big.NewInt(5),
		},
		{
			name:     "Success - zero operand",
			x:        big.NewInt(0),
			y:        big.NewInt(7),
			expected: big.NewInt(7),
		},
		{
			name:     "Success - sum equals domain maximum",
			x:        new(big.Int).Sub(maxUint256, big.NewInt(1)),
			y:        big.NewInt(1),
			expected: new(big.Int).Set(maxUint256),
		},
		{
			name:        "Failure - sum exceeds domain maximum",
			x:           new(big.Int).Set(maxUint256),
			y:           big.NewInt(1),
			expectedErr: safemath.ErrArithmeticOverflow,
		},
		{
			name:        "Failure - negative operand",
			x:           big.NewInt(-1),
			y:           big.NewInt(1),
			expectedErr: safemath.ErrArithmeticUnderflow,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := safemath.Add(tt.x, tt.y)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			require.Zero(t, result.Cmp(tt.expected))
		})
	}
}

func TestAddDoesNotMutateOperands(t *testing.T) {
	t.Parallel()

	x := big.NewInt(10)
	y := big.NewInt(20)

	_, err := safemath.Add(x, y)
	require.NoError(t, err)
	require.Zero(t, x.Cmp(big.NewInt(10)))
	require.Zero(t, y.Cmp(big.NewInt(20)))
}

func TestSub(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		x           *big.Int
		y           *big.Int
		expected    *big.Int
		expectedErr error
	}{
		{
			name:     "Success - simple subtraction",
			x:        big.NewInt(10),
			y:        big.NewInt(4),
			expected: big.NewInt(6),
		},
		{
			name:     "Success - equal operands",
			x:        big.NewInt(9),
			y:        big.NewInt(9),
			expected: big.NewInt(0),
		},
		{
			name:        "Failure - y greater than x",
			x:           big.NewInt(4),
			y:           big.NewInt(10),
			expectedErr: safemath.ErrArithmeticUnderflow,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := safemath.Sub(tt.x, tt.y)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			require.Zero(t, result.Cmp(tt.expected))
		})
	}
}

func TestMul(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		x           *big.Int
		y           *big.Int
		expected    *big.Int
		expectedErr error
	}{
		{
			name:     "Success - simple product",
			x:        big.NewInt(6),
			y:        big.NewInt(7),
			expected: big.NewInt(42),
		},
		{
			name:     "Success - zero first operand short-circuits",
			x:        big.NewInt(0),
			y:        new(big.Int).Set(maxUint256),
			expected: big.NewInt(0),
		},
		{
			name:     "Success - zero second operand",
			x:        big.NewInt(5),
			y:        big.NewInt(0),
			expected: big.NewInt(0),
		},
		{
			name:        "Failure - product exceeds domain maximum",
			x:           new(big.Int).Set(maxUint256),
			y:           big.NewInt(2),
			expectedErr: safemath.ErrArithmeticOverflow,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := safemath.Mul(tt.x, tt.y)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			require.Zero(t, result.Cmp(tt.expected))
		})
	}
}
