package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/eventful-services/common/config"
	"github.com/eventful-services/common/logger"
	"github.com/eventful-services/common/view"
	"github.com/eventful-services/services/event-lambda/repository"
	eventusecase "github.com/eventful-services/services/event-lambda/usecase"
	"github.com/eventful-services/services/ticket-lambda/handler"
	"github.com/eventful-services/services/ticket-lambda/usecase"
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
	pages, err := view.New()
	if err != nil {
		logger.Fatal("parse templates: %v", err)
	}

	ticketHandler := handler.NewTicketHandler(usecase.NewTicketUseCase(eventusecase.NewEventUseCase(repo)), pages)
	lambda.Start(ticketHandler.Handle)
}
