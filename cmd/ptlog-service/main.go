package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/ptlog/ptlog/internal/config"
	"github.com/ptlog/ptlog/internal/logger"
	"github.com/ptlog/ptlog/ptlogservice"
)

func main() {
	dbDriver := flag.String("db-driver", "", "Override PTLOG_DB_DRIVER (postgres, sqlite)")
	flag.Parse()

	log := logger.New("ptlog-service")

	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *dbDriver != "" {
		cfg.DBDriver = *dbDriver
		if err := cfg.ResolveDefaults(); err != nil {
			log.Fatal().Err(err).Msg("Invalid db-driver override")
		}
	}

	if err := ptlogservice.Run(cfg); err != nil {
		os.Exit(1)
	}
}
