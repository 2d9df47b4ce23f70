package ports

import (
	"context"
	"time"
)

// Locker puerto de exclusión mutua entre procesos para trabajos fuera de línea
// (importación de planilla, reparación de stock). Adaptadores: Redis o en proceso.
type Locker interface {
	// Obtain toma el lock sin esperar. Devuelve domain.ErrConflict si otro proceso ya lo tiene.
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Lock lock tomado; debe liberarse al terminar el trabajo.
type Lock interface {
	Release(ctx context.Context) error
}

// Claves de lock conocidas.
const (
	LockStockImport = "perecibles:jobs:stock-import"
	LockStockRepair = "perecibles:jobs:stock-repair"
)
