package main

import (
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	jirani.SetupLogger()

	if err := jirani.Start(nil); err != nil {
		slog.Error("Server exited with error", "error", err)
	}
}
