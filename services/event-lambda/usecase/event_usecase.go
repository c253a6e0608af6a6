package usecase

import (
	"context"

	apperrors "github.com/eventful-services/common/errors"
	"github.com/eventful-services/services/event-lambda/models"
	"github.com/eventful-services/services/event-lambda/repository"
)

// EventUseCase exposes the ticket catalog.
type EventUseCase struct {
	eventRepo *repository.EventRepository
}

func NewEventUseCase(repo *repository.EventRepository) *EventUseCase {
	return &EventUseCase{eventRepo: repo}
}

// ListEvents returns the catalog in a stable order. An empty catalog yields an empty slice.
func (uc *EventUseCase) ListEvents(ctx context.Context) []models.Event {
	return uc.eventRepo.All()
}

// GetEvent returns one event or an E3001 not-found error.
func (uc *EventUseCase) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	event, ok := uc.eventRepo.FindByID(id)
	if !ok {
		return nil, apperrors.NotFound("Event").WithField("eventId", id)
	}
	return &event, nil
}
