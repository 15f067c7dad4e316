package bot

import (
	"context"
	"errors"
	"fmt"

	"adtime-printshop/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (b *Bot) handleAdminCommand(ctx context.Context, chatID int64, cmd string, args []string) {
	if !b.isAdmin(chatID) {
		b.sendError(chatID, "Команда доступна только администраторам")
		return
	}

	switch cmd {
	case "export":
		if len(args) == 0 {
			b.sendError(chatID, "Использование: /export <ID_заказа>")
			return
		}
		quoteID, err := uuid.Parse(args[0])
		if err != nil {
			b.sendError(chatID, "Неверный формат ID заказа")
			return
		}
		b.handleExportQuote(ctx, chatID, quoteID)
	default:
		b.sendError(chatID, "Неизвестная команда администратора")
	}
}

func (b *Bot) handleExportQuote(ctx context.Context, chatID int64, quoteID uuid.UUID) {
	quote, err := b.quotes.GetQuote(ctx, quoteID)
	if err != nil {
		if errors.Is(err, storage.ErrQuoteNotFound) {
			b.sendError(chatID, "Заказ не найден")
			return
		}
		b.logger.Error("Failed to get quote",
			zap.String("quote_id", quoteID.String()),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при получении заказа")
		return
	}

	path, err := storage.ExportQuoteToExcel(b.exportDir, *quote)
	if err != nil {
		b.logger.Error("Failed to export quote",
			zap.String("quote_id", quoteID.String()),
			zap.Error(err))
		b.sendError(chatID, "Failed to export quote")
		return
	}

	msg := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	msg.Caption = fmt.Sprintf("📊 Quote %s export", quoteID)

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send Excel file", zap.Error(err))
		b.sendError(chatID, "Failed to send exported file")
	}
}
