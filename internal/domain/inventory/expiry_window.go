package inventory

import "time"

// ExpiryWindow ventana de riesgo de vencimiento de un lote activo, relativa a "ahora".
type ExpiryWindow int

const (
	WindowExpired ExpiryWindow = iota // vencimiento < ahora
	Window0To30                       // [ahora, ahora+30d]
	Window31To60                      // (ahora+30d, ahora+60d]
	Window61To90                      // (ahora+60d, ahora+90d]
	WindowOver90                      // > ahora+90d
)

const day = 24 * time.Hour

// Horizontes usados por el dashboard.
const (
	NearExpiryHorizon = 15 * day
	RiskHorizon       = 90 * day
)

// ClassifyExpiry ubica una fecha de vencimiento en su ventana.
// La primera ventana es cerrada en ambos extremos; las demás excluyen el límite
// inferior e incluyen el superior.
func ClassifyExpiry(now, expiry time.Time) ExpiryWindow {
	switch {
	case expiry.Before(now):
		return WindowExpired
	case !expiry.After(now.Add(30 * day)):
		return Window0To30
	case !expiry.After(now.Add(60 * day)):
		return Window31To60
	case !expiry.After(now.Add(90 * day)):
		return Window61To90
	default:
		return WindowOver90
	}
}

// WithinHorizon indica si expiry está en [now, now+horizon].
func WithinHorizon(now, expiry time.Time, horizon time.Duration) bool {
	return !expiry.Before(now) && !expiry.After(now.Add(horizon))
}

// DaysUntil días completos hasta el vencimiento (negativo si ya venció).
func DaysUntil(now, expiry time.Time) int {
	return int(expiry.Sub(now).Hours() / 24)
}
