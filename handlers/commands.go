package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"padel-bot/botapi"
	"padel-bot/checker"
	"padel-bot/storage"
)

const welcomeText = `Hi! I watch Playtomic for free padel courts.

/courts - check availability right now
/watch - notify me when availability changes
/unwatch - stop notifications
/times - show my preferred start times
/times_add HH:MM:SS - add a preferred start time
/times_del HH:MM:SS - remove a preferred start time
/add_club <name> - save a preferred club
/my_clubs - show my preferred clubs
/del_club - remove a preferred club`

type Handler struct {
	Bot          *tgbotapi.BotAPI
	Store        *storage.Storage
	Checker      *checker.Checker
	API          *botapi.Client
	DefaultTimes []string
	Log          *zap.Logger
}

func New(bot *tgbotapi.BotAPI, store *storage.Storage, check *checker.Checker, api *botapi.Client, defaultTimes []string, log *zap.Logger) *Handler {
	return &Handler{
		Bot:          bot,
		Store:        store,
		Checker:      check,
		API:          api,
		DefaultTimes: defaultTimes,
		Log:          log,
	}
}

func (h *Handler) HandleStart(msg *tgbotapi.Message) {
	h.reply(msg.Chat.ID, welcomeText)
}

func (h *Handler) HandlePing(msg *tgbotapi.Message) {
	h.reply(msg.Chat.ID, "pong")
}

func (h *Handler) HandleID(msg *tgbotapi.Message) {
	h.reply(msg.Chat.ID, fmt.Sprintf("%d", msg.Chat.ID))
}

// HandleCourts runs an on-demand availability check with the chat's
// desired times and sends one message per venue.
func (h *Handler) HandleCourts(msg *tgbotapi.Message) {
	h.reply(msg.Chat.ID, "Let me check for you, just a moment...")

	// the check issues dozens of upstream requests; don't block the
	// update loop on it
	go func() {
		ctx := context.Background()
		times := h.desiredTimes(ctx, msg.Chat.ID, msg.From)

		summaries, err := h.Checker.CheckNow(ctx, times)
		if err != nil {
			h.Log.Error("on-demand check", zap.Int64("chat", msg.Chat.ID), zap.Error(err))
			h.reply(msg.Chat.ID, "Something went wrong, try again later 😢")
			return
		}
		for _, summary := range summaries {
			h.reply(msg.Chat.ID, summary)
		}
	}()
}

// HandleWatch subscribes the chat to availability change notifications.
func (h *Handler) HandleWatch(msg *tgbotapi.Message) {
	ctx := context.Background()
	times := h.desiredTimes(ctx, msg.Chat.ID, msg.From)

	w := &storage.Watcher{ChatID: msg.Chat.ID, DesiredTimes: times}
	if err := h.Store.SaveWatcher(ctx, w); err != nil {
		h.Log.Error("saving watcher", zap.Int64("chat", msg.Chat.ID), zap.Error(err))
		h.reply(msg.Chat.ID, "Could not save your watch, sorry.")
		return
	}

	h.reply(msg.Chat.ID, fmt.Sprintf("Watching for courts at %s. I'll message you when something changes.", strings.Join(times, ", ")))
}

func (h *Handler) HandleUnwatch(msg *tgbotapi.Message) {
	if err := h.Store.DeleteWatcher(context.Background(), msg.Chat.ID); err != nil {
		h.Log.Error("deleting watcher", zap.Int64("chat", msg.Chat.ID), zap.Error(err))
		h.reply(msg.Chat.ID, "Could not stop the watch, sorry.")
		return
	}
	h.reply(msg.Chat.ID, "Ok, I'll stop watching.")
}

// desiredTimes resolves the start times for a chat: its saved watcher
// first, then the remotely stored preferred times, then the configured
// defaults.
func (h *Handler) desiredTimes(ctx context.Context, chatID int64, from *tgbotapi.User) []string {
	if w, err := h.Store.Watcher(ctx, chatID); err == nil && w != nil && len(w.DesiredTimes) > 0 {
		return w.DesiredTimes
	}

	if from != nil {
		times, err := h.API.PreferredTimes(ctx, apiUser(from))
		if err != nil {
			h.Log.Warn("fetching preferred times", zap.Int64("chat", chatID), zap.Error(err))
		} else if len(times) > 0 {
			return times
		}
	}

	return h.DefaultTimes
}

func (h *Handler) reply(chatID int64, text string) {
	if _, err := h.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.Log.Error("sending message", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func apiUser(from *tgbotapi.User) botapi.User {
	return botapi.User{ID: from.ID, FirstName: from.FirstName, UserName: from.UserName}
}
