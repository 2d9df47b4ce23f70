// migrate aplica o revierte las migraciones SQL embebidas.
//
// Uso: go run ./cmd/migrate -action up|down|version|force [-version N]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/perecibles-api/internal/infrastructure/postgres"
	"github.com/jhoicas/perecibles-api/pkg/config"
	"github.com/jhoicas/perecibles-api/pkg/logger"
)

func main() {
	action := flag.String("action", "up", "up | down | version | force")
	version := flag.Int("version", -1, "versión para -action force")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "migrate"})

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer m.Close()

	switch *action {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = m.Version()
		if err == nil {
			log.Info().Uint("version", v).Bool("dirty", dirty).Msg("versión actual")
		}
	case "force":
		if *version < 0 {
			log.Fatal().Msg("-version requerido para force")
		}
		err = m.Force(*version)
	default:
		log.Fatal().Str("action", *action).Msg("acción desconocida")
	}
	if err != nil {
		log.Fatal().Err(err).Str("action", *action).Msg("migración fallida")
	}
}
