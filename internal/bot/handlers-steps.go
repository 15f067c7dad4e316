package bot

import (
	"context"
	"errors"
	"strings"

	"adtime-printshop/pkg/validate"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// advance stores the mutated state under the next step and asks the next question.
func (b *Bot) advance(ctx context.Context, chatID int64, state UserState, next string, prompt tgbotapi.MessageConfig) {
	state.Step = next
	if err := b.state.Save(ctx, chatID, state); err != nil {
		b.logger.Error("Failed to save dialog step",
			zap.Int64("chat_id", chatID),
			zap.String("step", next),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}
	b.sendMessage(prompt)
}

func (b *Bot) currentState(ctx context.Context, chatID int64) (UserState, bool) {
	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return UserState{}, false
	}
	return state, true
}

func (b *Bot) handleProductStep(ctx context.Context, chatID int64, text string) {
	id, err := ParsePositiveInt(text)
	if err != nil {
		b.sendError(chatID, "ID продукта должен быть положительным числом")
		return
	}

	state, ok := b.currentState(ctx, chatID)
	if !ok {
		return
	}
	state.Request.ProductID = id

	b.advance(ctx, chatID, state, StepQuantity, tgbotapi.NewMessage(chatID, "Введите тираж (шт.):"))
}

func (b *Bot) handleQuantityStep(ctx context.Context, chatID int64, text string) {
	qty, err := ParsePositiveInt(text)
	if err != nil {
		b.sendError(chatID, "Тираж должен быть положительным числом")
		return
	}

	state, ok := b.currentState(ctx, chatID)
	if !ok {
		return
	}
	state.Request.Quantity = qty

	msg := tgbotapi.NewMessage(chatID, "Введите ID материала или «-», чтобы пропустить:")
	msg.ReplyMarkup = createSkipKeyboard()
	b.advance(ctx, chatID, state, StepMaterial, msg)
}

func (b *Bot) handleMaterialStep(ctx context.Context, chatID int64, text string) {
	id, err := ParseOptionalID(text)
	if err != nil && !errors.Is(err, errSkipped) {
		b.sendError(chatID, "ID материала должен быть положительным числом или «-»")
		return
	}

	state, ok := b.currentState(ctx, chatID)
	if !ok {
		return
	}
	state.Request.MaterialID = id

	msg := tgbotapi.NewMessage(chatID, "Выберите ламинацию:")
	msg.ReplyMarkup = createLaminationKeyboard()
	b.advance(ctx, chatID, state, StepLamination, msg)
}

func (b *Bot) handleLaminationStep(ctx context.Context, chatID int64, text string) {
	state, ok := b.currentState(ctx, chatID)
	if !ok {
		return
	}
	state.Request.Lamination = ParseLamination(text)

	msg := tgbotapi.NewMessage(chatID, "Выберите тип печати или «-», чтобы пропустить:")
	msg.ReplyMarkup = createPrintTypeKeyboard()
	b.advance(ctx, chatID, state, StepPrintType, msg)
}

func (b *Bot) handlePrintTypeStep(ctx context.Context, chatID int64, text string) {
	state, ok := b.currentState(ctx, chatID)
	if !ok {
		return
	}

	state.Request.PrintType = nil
	if printType := strings.TrimSpace(text); printType != "" && !isSkip(printType) {
		state.Request.PrintType = &printType
	}

	msg := tgbotapi.NewMessage(chatID, "Введите размер изделия в мм (например, 90x50) или «-»:")
	msg.ReplyMarkup = createSkipKeyboard()
	b.advance(ctx, chatID, state, StepDimensions, msg)
}

func (b *Bot) handleDimensionsStep(ctx context.Context, chatID int64, text string) {
	state, ok := b.currentState(ctx, chatID)
	if !ok {
		return
	}

	state.Request.Width, state.Request.Height = nil, nil
	if !isSkip(text) {
		width, height, err := ParseDimensions(text)
		if err != nil {
			b.sendError(chatID, "Неверный формат размера. Пример: 90x50")
			return
		}
		state.Request.Width, state.Request.Height = &width, &height
	}

	if err := validate.Struct(state.Request); err != nil {
		b.sendError(chatID, "Недопустимые параметры заказа: "+validate.Describe(err))
		return
	}

	res := b.pricer.CalculatePrice(ctx, state.Request)

	msg := tgbotapi.NewMessage(chatID, FormatPriceResult(state.Request, res))
	if res.Priced() {
		msg.ReplyMarkup = createConfirmKeyboard()
	} else {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}
	b.advance(ctx, chatID, state, StepConfirm, msg)
}
