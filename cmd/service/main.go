package main

import (
	"os"
	"strconv"

	"go.uber.org/zap"

	"gitlab.com/william.mucha/users-service/internal/codec"
	"gitlab.com/william.mucha/users-service/internal/service"
	"gitlab.com/william.mucha/users-service/internal/session"
	"gitlab.com/william.mucha/users-service/internal/store"
)

// Usage example on the command line:
// > PORT=8080 DBHOST=localhost DBUSER=will DBPWD=secret GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	config := zap.NewProductionConfig()
	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	sqlDB, err := store.CreateDatabase()
	if err != nil {
		logger.Fatal("could not open database", zap.Error(err))
	}
	gateway, err := store.NewSQL(sqlDB)
	if err != nil {
		logger.Fatal("could not prepare statements", zap.Error(err))
	}

	c := codec.New()
	sess := session.New(gateway, c, logger)
	router := service.NewServer(gateway, sess, logger).SetupHttpRouter()

	port := os.Getenv("PORT")
	if _, err := strconv.Atoi(port); err != nil {
		logger.Fatal("could not parse PORT env variable", zap.Error(err))
	}
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
