package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/hitoshi/meetplan/internal/app"
)

func main() {
	if err := loadEnvFile(); err != nil {
		slog.Warn("failed to load .env", slog.String("error", err.Error()))
	}

	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		slog.Error("meetplan exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadEnvFile は.envがあれば読み込む。既存の環境変数は上書きしない。
// ファイルが存在しない場合はエラーにしない。
func loadEnvFile(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
