package utility

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// RoundMoney làm tròn 2 chữ số thập phân, nửa làm tròn ra xa 0 (2.495 -> 2.50).
// Dùng decimal để tránh sai số nhị phân của float64.
func RoundMoney(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatMoney định dạng giá hiển thị, ví dụ $2.50
func FormatMoney(v float64) string {
	return fmt.Sprintf("$%s", decimal.NewFromFloat(v).StringFixed(2))
}
