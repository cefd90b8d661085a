package main

import (
	"log"
	"os"

	"github.com/ljmurray/squircle/internal/api"
	"github.com/ljmurray/squircle/internal/config"
	"github.com/ljmurray/squircle/internal/engine"
	"github.com/ljmurray/squircle/internal/protocol"
	"github.com/ljmurray/squircle/internal/worker"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("squircle: starting",
		"listen_addr", cfg.ListenAddr,
		"worker_bin", cfg.WorkerBin,
		"worker_disabled", cfg.DisableWorker,
	)

	engCfg := engine.Config{Timeout: cfg.DispatchTimeout}
	if !cfg.DisableWorker {
		bin := worker.LocateBinary(cfg.WorkerBin)
		engCfg.Factory = func(onResponse func(protocol.Response), onFailure func(error)) (engine.Transport, error) {
			return worker.Spawn(bin, logger, onResponse, onFailure)
		}
	}

	eng := engine.New(engCfg, logger)
	defer eng.Terminate()

	srv := api.NewServer(cfg.ListenAddr, eng, logger)

	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
