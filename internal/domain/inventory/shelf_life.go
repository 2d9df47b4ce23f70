package inventory

import "time"

// ExpiryFromShelfLife vencimiento = fabricación + meses de vida útil.
func ExpiryFromShelfLife(manufacture time.Time, months int) time.Time {
	return manufacture.AddDate(0, months, 0)
}

// MonthsBetween meses calendario completos entre fabricación y vencimiento.
// Un mes sólo cuenta si el día del mes de vencimiento alcanza al de fabricación.
func MonthsBetween(manufacture, expiry time.Time) int {
	y1, m1, d1 := manufacture.Date()
	y2, m2, d2 := expiry.Date()
	months := (y2-y1)*12 + int(m2-m1)
	if d2 < d1 {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
