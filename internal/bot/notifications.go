package bot

import (
	"fmt"
	"strings"

	"adtime-printshop/internal/pricing"
	"adtime-printshop/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// notifyNewQuote sends a short summary to the admin channel.
func (b *Bot) notifyNewQuote(q storage.Quote) {
	if b.cfg.Admin.ChannelID == 0 {
		b.logger.Debug("Channel notifications disabled - no channel ID configured")
		return
	}

	msg := tgbotapi.NewMessage(b.cfg.Admin.ChannelID, FormatQuoteNotification(q))
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send quote notification to channel",
			zap.Int64("channel_id", b.cfg.Admin.ChannelID),
			zap.Error(err))
	}
}

func FormatPriceResult(req pricing.Request, res pricing.Result) string {
	var sb strings.Builder

	if res.Priced() {
		fmt.Fprintf(&sb, "💵 Цена за шт.: %s\n", res.UnitPrice.StringFixed(4))
		fmt.Fprintf(&sb, "💰 Итого за %d шт.: %s\n", req.Quantity, res.TotalPrice.StringFixed(2))
	} else {
		sb.WriteString("⚠️ Цену не удалось определить автоматически.\n")
	}

	if len(res.AppliedRules) > 0 {
		sb.WriteString("\n📊 Детали расчёта:\n")
		for _, line := range res.AppliedRules {
			sb.WriteString("- " + line + "\n")
		}
	}

	if len(res.Warnings) > 0 {
		sb.WriteString("\n⚠️ Предупреждения:\n")
		for _, w := range res.Warnings {
			sb.WriteString("- " + w + "\n")
		}
	}

	if res.Priced() {
		sb.WriteString("\nОтправьте /confirm, чтобы сохранить заказ.")
	} else {
		sb.WriteString("\nОбратитесь к менеджеру или начните заново: /price")
	}
	return sb.String()
}

func FormatQuoteNotification(q storage.Quote) string {
	size := "-"
	if q.WidthMM != nil && q.HeightMM != nil {
		size = fmt.Sprintf("%gx%g мм", *q.WidthMM, *q.HeightMM)
	}

	return fmt.Sprintf(
		"📦 Новый заказ %s\n"+
			"Продукт: #%d\n"+
			"Тираж: %d шт.\n"+
			"Размер: %s\n"+
			"Ламинация: %s\n"+
			"Цена за шт.: %s\n"+
			"Итого: %s\n"+
			"Расчёт: %s\n"+
			"Создан: %s (%s)",
		q.ID,
		q.ProductID,
		q.Quantity,
		size,
		q.Lamination,
		q.UnitPrice.StringFixed(4),
		q.TotalPrice.StringFixed(2),
		q.Tier,
		q.CreatedBy,
		q.CreatedAt.Format("02.01.2006 15:04"),
	)
}
