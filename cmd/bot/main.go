// cmd/bot/main.go
package main

import (
	"context"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"property-report-bot/internal/bot"
	"property-report-bot/internal/common/aws"
	"property-report-bot/internal/common/config"
	"property-report-bot/internal/common/logger"
	"property-report-bot/internal/common/observability"
	"property-report-bot/internal/datasource"
	"property-report-bot/internal/delivery"
	"property-report-bot/internal/digest"
)

const updateTimeout = 75 * time.Second

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	zapLog.Info("Starting property report bot...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Component logger honoring the configured level and format.
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	obs := observability.New(cfg.App.Name, cfg.Tracing.JaegerEndpoint)
	defer obs.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Metrics endpoint ---
	if cfg.Metrics.Enabled {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			zapLog.Info("metrics endpoint listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
				zapLog.Error("metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	// --- Data source ---
	fetcher := datasource.NewClient(cfg.DataSource, log)

	// --- Telegram client ---
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		zapLog.Fatal("telegram client init failed", zap.Error(err))
	}
	zapLog.Info("Telegram client authorized", zap.String("username", api.Self.UserName))

	sender := delivery.NewTelegramSender(api, cfg.Telegram.MessageLimit, log)
	service := bot.NewService(fetcher, obs, log)

	// --- Scheduled digest (optional) ---
	if cfg.Digest.Enabled {
		var email digest.EmailSender
		var topic digest.TopicPublisher

		if cfg.Digest.Email.Enabled {
			sesClient, err := aws.NewSESClient(ctx, cfg.Digest.AWS.Region)
			if err != nil {
				zapLog.Fatal("ses client init failed", zap.Error(err))
			}
			email = sesClient
		}
		if cfg.Digest.SMS.Enabled {
			snsClient, err := aws.NewSNSClient(ctx, cfg.Digest.AWS.Region)
			if err != nil {
				zapLog.Fatal("sns client init failed", zap.Error(err))
			}
			topic = snsClient
		}

		scheduler := digest.NewScheduler(cfg.Digest, fetcher, email, topic, log)
		if err := scheduler.Start(); err != nil {
			zapLog.Fatal("digest scheduler start failed", zap.Error(err))
		}
		defer scheduler.Stop()
	}

	// --- Update loop ---
	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = cfg.Telegram.PollTimeout
	updates := api.GetUpdatesChan(updateCfg)

	zapLog.Info("Bot is up, polling for updates")

	go func() {
		for update := range updates {
			update := update
			go handleUpdate(ctx, update, service, sender, log)
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	api.StopReceivingUpdates()
	cancel()
}

// handleUpdate runs one command or callback pipeline. Each update gets its
// own goroutine; the service holds no mutable state.
func handleUpdate(ctx context.Context, update tgbotapi.Update, service *bot.Service, sender *delivery.TelegramSender, log logger.Logger) {
	ctx, timeoutCancel := context.WithTimeout(ctx, updateTimeout)
	defer timeoutCancel()

	switch {
	case update.Message != nil && update.Message.IsCommand():
		msg := update.Message
		sender.SendChatAction(msg.Chat.ID, tgbotapi.ChatTyping)

		args := strings.Fields(msg.CommandArguments())
		reply := service.Dispatch(ctx, msg.Command(), args)
		deliverReply(reply, msg.Chat.ID, sender, log)

	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		sender.AnswerCallback(query.ID)
		if query.Message == nil {
			return
		}
		chatID := query.Message.Chat.ID
		sender.SendChatAction(chatID, tgbotapi.ChatTyping)

		reply := service.HandleAction(ctx, query.Data)
		deliverReply(reply, chatID, sender, log)
	}
}

func deliverReply(reply bot.Reply, chatID int64, sender *delivery.TelegramSender, log logger.Logger) {
	if reply.Text != "" {
		if err := sender.SendText(chatID, reply.Text); err != nil {
			log.Error("text delivery failed", map[string]interface{}{
				"chat_id": chatID,
				"error":   err.Error(),
			})
		}
	}
	if len(reply.Image) > 0 {
		sender.SendChatAction(chatID, tgbotapi.ChatUploadPhoto)
		if err := sender.SendPhoto(chatID, reply.ImageName, reply.Image, reply.ImageCaption); err != nil {
			log.Error("photo delivery failed", map[string]interface{}{
				"chat_id": chatID,
				"error":   err.Error(),
			})
		}
	}
	if reply.Menu != nil {
		if err := sender.SendMenu(chatID, *reply.Menu); err != nil {
			log.Error("menu delivery failed", map[string]interface{}{
				"chat_id": chatID,
				"error":   err.Error(),
			})
		}
	}
}
