package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/eventful-services/common/config"
	"github.com/eventful-services/common/jwt"
	"github.com/eventful-services/common/logger"
	"github.com/eventful-services/common/view"
	"github.com/eventful-services/common/wallet"
	"github.com/eventful-services/services/checkout-lambda/handler"
	"github.com/eventful-services/services/checkout-lambda/usecase"
	"github.com/eventful-services/services/event-lambda/repository"
	eventusecase "github.com/eventful-services/services/event-lambda/usecase"
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

	payer := wallet.NewPayer(wallet.RegistryFromConfig(cfg.Wallet, nil), cfg.Wallet)
	uc := usecase.NewCheckoutUseCase(eventusecase.NewEventUseCase(repo), payer, cfg.CallbackURL())
	sessions := handler.NewSessionStore(jwt.NewSigner(cfg.Session.Secret, cfg.Session.TTL), cfg.Session.CookieName, cfg.Session.Secure)

	checkoutHandler := handler.NewCheckoutHandler(uc, sessions, pages)
	lambda.Start(checkoutHandler.Handle)
}
