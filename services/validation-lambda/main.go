package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/eventful-services/common/config"
	"github.com/eventful-services/common/email"
	"github.com/eventful-services/common/logger"
	"github.com/eventful-services/services/event-lambda/repository"
	eventusecase "github.com/eventful-services/services/event-lambda/usecase"
	ticketusecase "github.com/eventful-services/services/ticket-lambda/usecase"
	"github.com/eventful-services/services/validation-lambda/handler"
	"github.com/eventful-services/services/validation-lambda/usecase"
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
	tickets := ticketusecase.NewTicketUseCase(eventusecase.NewEventUseCase(repo))

	uc, err := usecase.NewValidationUseCase(cfg.Validation, cfg.Email.Policy, tickets, email.NewEmailService(cfg.Email))
	if err != nil {
		logger.Fatal("register validation rules: %v", err)
	}

	validationHandler := handler.NewValidationHandler(uc)
	lambda.Start(validationHandler.Handle)
}
