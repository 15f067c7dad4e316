package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"adtime-printshop/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Bot struct {
	api       Sender
	updates   func() tgbotapi.UpdatesChannel
	stop      func()
	logger    *zap.Logger
	state     *StateStorage
	pricer    Pricer
	quotes    QuoteStore
	limiter   RateLimiter
	cfg       *config.Config
	exportDir string
	mu        sync.Mutex
	handlers  map[string]func(context.Context, int64, string)
}

type Deps struct {
	State   StateBackend
	Pricer  Pricer
	Quotes  QuoteStore
	Limiter RateLimiter
}

func New(token string, deps Deps, logger *zap.Logger, cfg *config.Config) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	botAPI.Debug = cfg.Telegram.Debug

	logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	b := newBot(botAPI, deps, logger, cfg)
	b.updates = func() tgbotapi.UpdatesChannel {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		return botAPI.GetUpdatesChan(u)
	}
	b.stop = botAPI.StopReceivingUpdates
	return b, nil
}

func newBot(api Sender, deps Deps, logger *zap.Logger, cfg *config.Config) *Bot {
	b := &Bot{
		api:       api,
		logger:    logger,
		state:     NewStateStorage(deps.State),
		pricer:    deps.Pricer,
		quotes:    deps.Quotes,
		limiter:   deps.Limiter,
		cfg:       cfg,
		exportDir: "reports",
	}
	b.registerHandlers()
	return b
}

func (b *Bot) registerHandlers() {
	b.handlers = map[string]func(context.Context, int64, string){
		StepProduct:    b.handleProductStep,
		StepQuantity:   b.handleQuantityStep,
		StepMaterial:   b.handleMaterialStep,
		StepLamination: b.handleLaminationStep,
		StepPrintType:  b.handlePrintTypeStep,
		StepDimensions: b.handleDimensionsStep,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	updates := b.updates()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			if b.stop != nil {
				b.stop()
			}
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.processMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.Command(), strings.Fields(msg.CommandArguments()))
		return
	}

	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}

	if handler, exists := b.handlers[state.Step]; exists {
		handler(ctx, chatID, msg.Text)
	} else {
		b.handleDefault(chatID)
	}
}

func (b *Bot) isAdmin(chatID int64) bool {
	for _, id := range b.cfg.Admin.IDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("text", msg.Text),
			zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, "❌ "+text))
}
