// internal/delivery/telegram.go
package delivery

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"property-report-bot/internal/common/errors"
	"property-report-bot/internal/common/logger"
	"property-report-bot/internal/common/metrics"
)

const retryDelay = 100 * time.Millisecond

// Button is one inline-keyboard button. Data is the callback payload sent
// back when the button is pressed.
type Button struct {
	Label string
	Data  string
}

// Menu is a text message carrying an inline keyboard.
type Menu struct {
	Text string
	Rows [][]Button
}

// botAPI is the slice of the Telegram client the sender needs. The concrete
// *tgbotapi.BotAPI satisfies it; tests swap in a fake.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// TelegramSender delivers replies to a Telegram chat, splitting long texts
// into chunks under the configured message limit.
type TelegramSender struct {
	api    botAPI
	limit  int
	logger logger.Logger
}

func NewTelegramSender(api botAPI, messageLimit int, log logger.Logger) *TelegramSender {
	return &TelegramSender{
		api:    api,
		limit:  messageLimit,
		logger: log,
	}
}

// send pushes one chattable, retrying on failure. DELIVERY_FAILED is the
// retryable code, so its retry budget bounds the attempts.
func (s *TelegramSender) send(c tgbotapi.Chattable) error {
	retries := errors.GetRetryCount(errors.ErrCodeDeliveryFailed)

	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}
		if _, err = s.api.Send(c); err == nil {
			return nil
		}
	}
	return err
}

// SendText splits text into chunks and sends them in order. A chunk that
// exhausts its retries is logged and skipped so the remaining chunks still go
// out; an error is returned only when nothing was delivered.
func (s *TelegramSender) SendText(chatID int64, text string) error {
	chunks := Split(text, s.limit)
	if len(chunks) == 0 {
		return nil
	}

	var delivered int
	var lastErr error
	for i, chunk := range chunks {
		if err := s.send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			lastErr = err
			metrics.ChunksDelivered.WithLabelValues("failed").Inc()
			s.logger.Warn("chunk delivery failed", map[string]interface{}{
				"chat_id": chatID,
				"chunk":   i + 1,
				"chunks":  len(chunks),
				"error":   err.Error(),
			})
			continue
		}
		delivered++
		metrics.ChunksDelivered.WithLabelValues("sent").Inc()
	}

	if delivered == 0 {
		return errors.NewDeliveryFailedError(lastErr)
	}
	return nil
}

// SendPhoto uploads an in-memory PNG with an optional caption.
func (s *TelegramSender) SendPhoto(chatID int64, name string, image []byte, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: image})
	photo.Caption = caption
	if err := s.send(photo); err != nil {
		return errors.NewDeliveryFailedError(fmt.Errorf("send photo: %w", err))
	}
	return nil
}

// SendMenu sends a text message with an inline keyboard built from the
// menu's button rows.
func (s *TelegramSender) SendMenu(chatID int64, menu Menu) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(menu.Rows))
	for _, row := range menu.Rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}

	msg := tgbotapi.NewMessage(chatID, menu.Text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if err := s.send(msg); err != nil {
		return errors.NewDeliveryFailedError(fmt.Errorf("send menu: %w", err))
	}
	return nil
}

// SendChatAction shows a typing or upload indicator. Failures are logged
// only; the action is cosmetic.
func (s *TelegramSender) SendChatAction(chatID int64, action string) {
	if _, err := s.api.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		s.logger.Debug("chat action failed", map[string]interface{}{
			"chat_id": chatID,
			"action":  action,
			"error":   err.Error(),
		})
	}
}

// AnswerCallback acknowledges an inline-button press so the client stops
// showing its progress spinner.
func (s *TelegramSender) AnswerCallback(callbackID string) {
	if _, err := s.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		s.logger.Debug("callback answer failed", map[string]interface{}{
			"callback_id": callbackID,
			"error":       err.Error(),
		})
	}
}
