package main

import (
	"ai_mentor_client/internal/app"
	"ai_mentor_client/internal/config"
	"ai_mentor_client/pkg/logger"
	"flag"
	"log"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "config.yaml 所在目录")
	backendURL := flag.String("backend", "", "覆盖 backend.base_url")
	port := flag.String("port", "", "覆盖 server.port")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.ApplyOverrides(config.Overrides{BackendURL: *backendURL, Port: *port}); err != nil {
		log.Fatalf("Invalid command line override: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
