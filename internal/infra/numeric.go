package infra

import (
	"fmt"
	"math"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

// averageScale is the number of decimal places kept for averages stored in
// numeric(6,2) columns.
const averageScale = 2

// NumericToFloat64 converts a pgtype.Numeric (from a numeric(6,2) average
// column) to float64. NULL, NaN and infinities are rejected.
func NumericToFloat64(n pgtype.Numeric) (float64, error) {
	if !n.Valid {
		return 0, fmt.Errorf("numeric value is NULL")
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return 0, fmt.Errorf("numeric value is not finite")
	}

	// pgtype.Numeric stores value as Int * 10^Exp
	r := new(big.Rat).SetInt(n.Int)
	if n.Exp > 0 {
		r.Mul(r, new(big.Rat).SetInt(pow10(n.Exp)))
	} else if n.Exp < 0 {
		r.Quo(r, new(big.Rat).SetInt(pow10(-n.Exp)))
	}

	f, _ := r.Float64()
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("numeric value %s overflows float64", r.FloatString(averageScale))
	}
	return f, nil
}

// Float64ToNumeric converts v to pgtype.Numeric rounded to two decimals.
func Float64ToNumeric(v float64) pgtype.Numeric {
	scaled := math.Round(v * math.Pow10(averageScale))
	return pgtype.Numeric{
		Int:              big.NewInt(int64(scaled)),
		Exp:              -averageScale,
		NaN:              false,
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}

func pow10(exp int32) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
}
