package main

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"padel-bot/botapi"
	"padel-bot/checker"
	"padel-bot/config"
	"padel-bot/handlers"
	"padel-bot/playtomic"
	"padel-bot/storage"
)

func newLogger(cfg config.App) (*zap.Logger, error) {
	var zapCfg zap.Config
	switch cfg.LogFormat {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("loading config", zap.Error(err))
	}

	logger, err := newLogger(cfg)
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("building logger", zap.Error(err))
	}
	defer logger.Sync()

	policy, err := cfg.ParseDurationPolicy()
	if err != nil {
		logger.Fatal("parsing duration policy", zap.Error(err))
	}

	store := storage.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		cancel()
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	cancel()
	defer store.Close()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("telegram auth failed", zap.Error(err))
	}
	logger.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	client := playtomic.NewClient(
		cfg.PlaytomicURL,
		cfg.PlaytomicEmail,
		cfg.PlaytomicPassword,
		cfg.RelevantTenants,
		store,
		logger.Named("playtomic"),
	)
	api := botapi.NewClient(cfg.BotAPIURL, cfg.JWTSecret)

	check := checker.New(bot, store, client, policy, cfg.CheckInterval, logger.Named("checker"))
	go check.Start(context.Background())

	handler := handlers.New(bot, store, check, api, cfg.DesiredTimes, logger.Named("handlers"))

	if cfg.TelegramAdminID != 0 {
		bot.Send(tgbotapi.NewMessage(cfg.TelegramAdminID, "I'm listening..."))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	logger.Info("bot is running")

	for update := range bot.GetUpdatesChan(u) {
		switch {
		case update.Message != nil:
			handleMessage(handler, update.Message)
		case update.CallbackQuery != nil:
			handleCallback(handler, update.CallbackQuery)
		}
	}
}

func handleMessage(h *handlers.Handler, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.HandleStart(msg)

	case "ping":
		h.HandlePing(msg)

	case "id":
		h.HandleID(msg)

	case "courts":
		h.HandleCourts(msg)

	case "watch":
		h.HandleWatch(msg)

	case "unwatch":
		h.HandleUnwatch(msg)

	case "times":
		h.HandleTimes(msg)

	case "times_add":
		h.HandleTimesAdd(msg)

	case "times_del":
		h.HandleTimesDel(msg)

	case "add_club":
		h.HandleAddClub(msg)

	case "my_clubs":
		h.HandleMyClubs(msg)

	case "del_club":
		h.HandleDelClub(msg)

	default:
		h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "Unknown command. Try /start"))
	}
}

func handleCallback(h *handlers.Handler, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil {
		return
	}

	data := cq.Data
	switch {
	case strings.HasPrefix(data, "addclub:"):
		h.HandleAddClubCallback(cq, strings.TrimPrefix(data, "addclub:"))

	case strings.HasPrefix(data, "delclub:"):
		h.HandleDelClubCallback(cq, strings.TrimPrefix(data, "delclub:"))

	default:
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, "Unknown action"))
	}
}
