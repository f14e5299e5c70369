package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/PratikDhanave/event-collector/internal/app"
	"github.com/PratikDhanave/event-collector/internal/config"
	"github.com/PratikDhanave/event-collector/internal/lambdahandler"
)

// main wires the same request flow as cmd/api behind an API Gateway proxy integration.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := app.NewLogger(cfg.SlogLevel())
	slog.SetDefault(logger)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	lambda.Start(lambdahandler.New(a.Service).Handle)
}
