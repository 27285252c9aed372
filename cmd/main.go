package main

import (
	"os"

	"github.com/SystemBuilders/LineAuth/internal/authfilter"
	"github.com/SystemBuilders/LineAuth/internal/filterchain"
	"github.com/SystemBuilders/LineAuth/internal/inspect"
	"github.com/SystemBuilders/LineAuth/internal/server"
	"github.com/SystemBuilders/LineAuth/internal/session"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(os.Stdout).With().Logger().Level(zerolog.GlobalLevel())

	sessions := session.NewShardedTable(16, log)
	chain := filterchain.NewChain(
		authfilter.NewServerFilter(sessions, log),
		server.NewEchoFilter(log),
	)

	scfg := server.NewSimpleConfig("127.0.0.1", "7777")
	srv := server.New(scfg, chain, log)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("server start failed")
	}
	defer srv.Close()

	if err := inspect.Start(sessions, "127.0.0.1:7778"); err != nil {
		log.Fatal().Err(err).Msg("inspection server failed")
	}
}
