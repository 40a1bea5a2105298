package market

import "math"

// ATMStrike rounds price to the nearest multiple of gap.
func ATMStrike(price float64, gap int) int {
	return int(math.Round(price/float64(gap))) * gap
}

// StrikeWindow returns the strikes from ATM-width to ATM+width inclusive,
// in ascending order.
func StrikeWindow(atm, gap, width int) []int {
	strikes := make([]int, 0, 2*width+1)
	for s := atm - width*gap; s <= atm+width*gap; s += gap {
		strikes = append(strikes, s)
	}
	return strikes
}
