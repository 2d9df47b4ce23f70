package inventory

// BatchState es la parte del lote que afecta al stock calculado del producto.
type BatchState struct {
	Active   bool
	Quantity int64
}

// StockDelta implementa la tabla de transiciones del stock calculado (servicio de dominio).
//
//	activo  → activo    : q_nueva - q_anterior
//	activo  → inactivo  : -q_anterior
//	inactivo → activo   : +q_nueva
//	inactivo → inactivo : 0
//
// Un lote nuevo se modela como transición desde BatchState{} (inactivo, 0).
func StockDelta(before, after BatchState) int64 {
	var prev, next int64
	if before.Active {
		prev = before.Quantity
	}
	if after.Active {
		next = after.Quantity
	}
	return next - prev
}
