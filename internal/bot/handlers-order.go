package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adtime-printshop/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleConfirm reprices the stored request against fresh reference data and
// saves it as an order line. Unpriced requests are never saved.
func (b *Bot) handleConfirm(ctx context.Context, chatID int64) {
	state, ok := b.currentState(ctx, chatID)
	if !ok {
		return
	}
	if state.Step != StepConfirm {
		b.sendError(chatID, "Нет рассчитанного заказа. Начните с /price")
		return
	}
	if !b.allow(ctx, chatID, "confirm") {
		return
	}

	res := b.pricer.CalculatePrice(ctx, state.Request)
	if !res.Priced() {
		b.sendError(chatID, "Цену не удалось определить, заказ не сохранён. Обратитесь к менеджеру.")
		return
	}

	quote := storage.NewQuote(state.Request, res, fmt.Sprintf("tg:%d", chatID), time.Now())
	if err := b.quotes.SaveQuote(ctx, quote); err != nil {
		b.logger.Error("Failed to save quote",
			zap.Int64("chat_id", chatID),
			zap.Int64("product_id", state.Request.ProductID),
			zap.Error(err))
		if errors.Is(err, storage.ErrUnpriced) {
			b.sendError(chatID, "Цену не удалось определить, заказ не сохранён.")
			return
		}
		b.sendError(chatID, "Ошибка при сохранении заказа")
		return
	}

	if err := b.state.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear state after confirm",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	b.logger.Info("Quote saved",
		zap.String("quote_id", quote.ID.String()),
		zap.Int64("chat_id", chatID),
		zap.String("total", quote.TotalPrice.StringFixed(2)))

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"✅ Заказ сохранён\nНомер: %s\nИтого: %s",
		quote.ID, quote.TotalPrice.StringFixed(2)))
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.sendMessage(msg)

	b.notifyNewQuote(quote)
}
