// Package main runs the wallet API: customers, multi-currency accounts, transfers and the ledger.
package main

import (
	"github.com/rs/zerolog/log"

	"github.com/go-petr/pet-wallet/cmd/httpserver"
	"github.com/go-petr/pet-wallet/internal/middleware"
	"github.com/go-petr/pet-wallet/pkg/configpkg"
	"github.com/go-petr/pet-wallet/pkg/dbpkg"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	if config.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Str("address", config.ServerAddress).Msg("WALLET API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
