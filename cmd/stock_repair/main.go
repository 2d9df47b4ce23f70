// stock_repair recalcula el stock calculado de cada producto desde sus lotes activos
// y corrige los contadores que se hayan desviado.
//
// Uso: go run ./cmd/stock_repair
// Requiere PostgreSQL; si REDIS_ADDR está definido toma el mismo lock que la API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/perecibles-api/internal/application/inventory"
	"github.com/jhoicas/perecibles-api/internal/application/ports"
	"github.com/jhoicas/perecibles-api/internal/infrastructure/lock"
	"github.com/jhoicas/perecibles-api/internal/infrastructure/postgres"
	"github.com/jhoicas/perecibles-api/pkg/config"
	"github.com/jhoicas/perecibles-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "stock_repair"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var locker ports.Locker = lock.NewMemoryLocker()
	if cfg.Redis.Enabled() {
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb)
	}

	uc := inventory.NewStockRepairUseCase(
		postgres.NewTxRunner(pool), postgres.NewProductRepository(pool), locker, cfg.Jobs.LockTTL, log)
	res, err := uc.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reparación de stock fallida")
		os.Exit(1)
	}
	for _, d := range res.Repaired {
		log.Info().Int64("product_key", d.ProductKey).Int64("stored", d.Stored).Int64("actual", d.Actual).Msg("contador corregido")
	}
	log.Info().Int("checked", res.Checked).Int("repaired", len(res.Repaired)).Msg("reparación terminada")
}
