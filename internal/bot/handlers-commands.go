package bot

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const helpText = `Доступные команды:
/price - Рассчитать стоимость заказа
/confirm - Сохранить рассчитанный заказ
/cancel - Отменить расчёт
/help - Показать эту справку`

func (b *Bot) handleCommand(ctx context.Context, chatID int64, cmd string, args []string) {
	switch cmd {
	case "start":
		b.handleStart(ctx, chatID)
	case "help":
		b.sendText(chatID, helpText)
	case "price":
		b.handlePrice(ctx, chatID)
	case "cancel":
		b.handleCancel(ctx, chatID)
	case "confirm":
		b.handleConfirm(ctx, chatID)
	case "export":
		b.handleAdminCommand(ctx, chatID, cmd, args)
	default:
		b.sendError(chatID, "Неизвестная команда. Используйте /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	if err := b.state.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear state on start",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	msg := tgbotapi.NewMessage(chatID, "Привет! 👋\n\nЯ рассчитаю стоимость печати по актуальному прайсу.\n\n"+helpText)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.sendMessage(msg)
}

func (b *Bot) handlePrice(ctx context.Context, chatID int64) {
	if !b.allow(ctx, chatID, "price") {
		return
	}

	if err := b.state.Save(ctx, chatID, UserState{Step: StepProduct}); err != nil {
		b.logger.Error("Failed to start price dialog",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}

	msg := tgbotapi.NewMessage(chatID, "Введите ID продукта:")
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.sendMessage(msg)
}

func (b *Bot) handleCancel(ctx context.Context, chatID int64) {
	if err := b.state.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear state on cancel",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	msg := tgbotapi.NewMessage(chatID, "❌ Расчёт отменён. Начните заново: /price")
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.sendMessage(msg)
}

func (b *Bot) handleDefault(chatID int64) {
	b.sendError(chatID, "Я не понимаю это сообщение. Используйте /price для расчёта.")
}

// allow fails open: a broken limiter must not block pricing.
func (b *Bot) allow(ctx context.Context, chatID int64, action string) bool {
	if b.limiter == nil {
		return true
	}

	allowed, err := b.limiter.Allow(ctx, strconv.FormatInt(chatID, 10), action)
	if err != nil {
		b.logger.Warn("Rate limit check failed",
			zap.Int64("chat_id", chatID),
			zap.String("action", action),
			zap.Error(err))
		return true
	}
	if !allowed {
		b.sendError(chatID, "Слишком много запросов. Попробуйте позже.")
	}
	return allowed
}
