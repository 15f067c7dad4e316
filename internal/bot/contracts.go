package bot

import (
	"context"

	"adtime-printshop/internal/pricing"
	"adtime-printshop/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Pricer interface {
	CalculatePrice(ctx context.Context, req pricing.Request) pricing.Result
}

type QuoteStore interface {
	SaveQuote(ctx context.Context, q storage.Quote) error
	GetQuote(ctx context.Context, id uuid.UUID) (*storage.Quote, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, subject, action string) (bool, error)
}

// StateBackend persists dialog state between updates.
type StateBackend interface {
	SaveState(ctx context.Context, chatID int64, state any) error
	GetState(ctx context.Context, chatID int64, state any) error
	ClearState(ctx context.Context, chatID int64) error
}
