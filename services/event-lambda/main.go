package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/eventful-services/common/config"
	"github.com/eventful-services/common/logger"
	"github.com/eventful-services/services/event-lambda/handler"
	"github.com/eventful-services/services/event-lambda/repository"
	"github.com/eventful-services/services/event-lambda/usecase"
)

// For AWS Lambda deployment
func main() {
	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal("load config: %v", err)
	}

	repo, err := repository.Open(context.Background(), cfg)
	if err != nil {
		logger.Fatal("load catalog: %v", err)
	}

	eventHandler := handler.NewEventHandler(usecase.NewEventUseCase(repo))
	lambda.Start(eventHandler.Handle)
}
