// internal/delivery/telegram_test.go
package delivery

import (
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-report-bot/internal/common/errors"
	"property-report-bot/internal/common/logger"
)

type fakeAPI struct {
	sent      []tgbotapi.Chattable
	requests  []tgbotapi.Chattable
	failFirst int // fail this many Send calls before succeeding
	failAll   bool
	calls     int
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.calls++
	if f.failAll || f.calls <= f.failFirst {
		return tgbotapi.Message{}, fmt.Errorf("boom")
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func newTestSender(t *testing.T, api *fakeAPI, limit int) *TelegramSender {
	t.Helper()
	return NewTelegramSender(api, limit, logger.NewTestLogger(t))
}

func TestSendText_SplitsIntoChunks(t *testing.T) {
	api := &fakeAPI{}
	sender := newTestSender(t, api, 4000)

	err := sender.SendText(42, strings.Repeat("a", 9000))
	require.NoError(t, err)
	require.Len(t, api.sent, 3)

	first, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), first.ChatID)
	assert.Len(t, first.Text, 4000)

	last := api.sent[2].(tgbotapi.MessageConfig)
	assert.Len(t, last.Text, 1000)
}

func TestSendText_TransientFailureIsRetried(t *testing.T) {
	api := &fakeAPI{failFirst: 1}
	sender := newTestSender(t, api, 4000)

	err := sender.SendText(42, "short")
	require.NoError(t, err)
	require.Len(t, api.sent, 1)
	assert.Equal(t, 2, api.calls)
}

func TestSendText_FailedChunkDoesNotStopTheRest(t *testing.T) {
	// The first chunk exhausts its full retry budget before the sender
	// moves on to the remaining chunks.
	attempts := 1 + errors.GetRetryCount(errors.ErrCodeDeliveryFailed)
	api := &fakeAPI{failFirst: attempts}
	sender := newTestSender(t, api, 4000)

	err := sender.SendText(42, strings.Repeat("a", 9000))
	require.NoError(t, err)
	assert.Len(t, api.sent, 2)
}

func TestSendText_AllChunksFailed(t *testing.T) {
	api := &fakeAPI{failAll: true}
	sender := newTestSender(t, api, 4000)

	err := sender.SendText(42, "short")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDeliveryFailed, errors.CodeOf(err))
	assert.Equal(t, 1+errors.GetRetryCount(errors.ErrCodeDeliveryFailed), api.calls)
}

func TestSendText_EmptyTextIsNoOp(t *testing.T) {
	api := &fakeAPI{}
	sender := newTestSender(t, api, 4000)

	require.NoError(t, sender.SendText(42, ""))
	assert.Empty(t, api.sent)
}

func TestSendPhoto(t *testing.T) {
	api := &fakeAPI{}
	sender := newTestSender(t, api, 4000)

	err := sender.SendPhoto(7, "chart.png", []byte{0x89, 'P', 'N', 'G'}, "Top 5")
	require.NoError(t, err)
	require.Len(t, api.sent, 1)

	photo, ok := api.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, int64(7), photo.ChatID)
	assert.Equal(t, "Top 5", photo.Caption)
}

func TestSendMenu_BuildsKeyboardRows(t *testing.T) {
	api := &fakeAPI{}
	sender := newTestSender(t, api, 4000)

	menu := Menu{
		Text: "Choose an option:",
		Rows: [][]Button{
			{{Label: "🏆 Top 5", Data: "action_top5"}, {Label: "🏆 Top 20", Data: "action_top20"}},
			{{Label: "🏡 Ratings", Data: "action_ratings"}},
		},
	}

	require.NoError(t, sender.SendMenu(9, menu))
	require.Len(t, api.sent, 1)

	msg := api.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, "Choose an option:", msg.Text)

	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Len(t, markup.InlineKeyboard[0], 2)
	assert.Equal(t, "🏆 Top 5", markup.InlineKeyboard[0][0].Text)
	require.NotNil(t, markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "action_top5", *markup.InlineKeyboard[0][0].CallbackData)
}

func TestSendChatActionAndCallbackAreBestEffort(t *testing.T) {
	api := &fakeAPI{}
	sender := newTestSender(t, api, 4000)

	sender.SendChatAction(1, tgbotapi.ChatTyping)
	sender.AnswerCallback("cb-1")
	assert.Len(t, api.requests, 2)
}
