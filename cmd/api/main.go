package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/perecibles-api/internal/application/analytics"
	"github.com/jhoicas/perecibles-api/internal/application/inventory"
	"github.com/jhoicas/perecibles-api/internal/application/ports"
	"github.com/jhoicas/perecibles-api/internal/application/usecase"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
	"github.com/jhoicas/perecibles-api/internal/infrastructure/lock"
	"github.com/jhoicas/perecibles-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/perecibles-api/internal/infrastructure/pdf"
	"github.com/jhoicas/perecibles-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/perecibles-api/internal/interfaces/http"
	"github.com/jhoicas/perecibles-api/pkg/config"
	"github.com/jhoicas/perecibles-api/pkg/logger"
)

// storage adaptadores de persistencia elegidos por STORAGE_DRIVER.
type storage struct {
	txRunner      inventory.TxRunner
	productRepo   repository.ProductRepository
	supplierRepo  repository.SupplierRepository
	knowledgeRepo repository.KnowledgeRepository
	readRepo      repository.InventoryReadRepository
	health        func(ctx context.Context) error
	close         func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: "api",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	locker, closeLocker, err := openLocker(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer closeLocker()

	ledgerUC := inventory.NewLedgerUseCase(store.txRunner, store.productRepo, store.supplierRepo, log)
	stockImportUC := inventory.NewStockImportUseCase(store.txRunner, locker, cfg.Jobs.LockTTL, log)
	stockRepairUC := inventory.NewStockRepairUseCase(store.txRunner, store.productRepo, locker, cfg.Jobs.LockTTL, log)
	supplierUC := usecase.NewSupplierUseCase(store.supplierRepo, log)
	knowledgeUC := usecase.NewKnowledgeUseCase(store.knowledgeRepo, log)

	// PDF: snapshot del dashboard de vencimientos
	reportGenerator := infrapdf.NewDashboardReport(cfg.App.Name)
	dashboardUC := appanalytics.NewDashboardUseCase(store.readRepo, reportGenerator, cfg.Dashboard.Timeout, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Dashboard.Timeout + 5*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Perecibles API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:     cfg.App.Name,
		Ledger:      ledgerUC,
		StockImport: stockImportUC,
		StockRepair: stockRepairUC,
		SupplierUC:  supplierUC,
		DashboardUC: dashboardUC,
		KnowledgeUC: knowledgeUC,
		HealthCheck: store.health,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		st := memory.NewStore()
		return &storage{
			txRunner:      st,
			productRepo:   st.Products(),
			supplierRepo:  st.Suppliers(),
			knowledgeRepo: st.Knowledge(),
			readRepo:      st,
			close:         func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
		if err != nil {
			return nil, err
		}
		err = m.Up()
		_ = m.Close()
		if err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		txRunner:      postgres.NewTxRunner(pool),
		productRepo:   postgres.NewProductRepository(pool),
		supplierRepo:  postgres.NewSupplierRepository(pool),
		knowledgeRepo: postgres.NewKnowledgeRepository(pool),
		readRepo:      postgres.NewInventoryReadRepository(pool),
		health:        func(ctx context.Context) error { return postgres.Ping(ctx, pool) },
		close:         pool.Close,
	}, nil
}

// openLocker Redis si REDIS_ADDR está definido; si no, locks en proceso (una sola instancia).
func openLocker(ctx context.Context, cfg *config.Config, log *logger.Logger) (ports.Locker, func(), error) {
	if !cfg.Redis.Enabled() {
		log.Info().Msg("REDIS_ADDR vacío: locks de trabajos en proceso")
		return lock.NewMemoryLocker(), func() {}, nil
	}
	rdb, err := lock.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return lock.NewRedisLocker(rdb), func() { _ = rdb.Close() }, nil
}
