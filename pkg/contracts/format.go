package contracts

import "strconv"

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
