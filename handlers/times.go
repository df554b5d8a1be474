package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// HandleTimes lists the chat's preferred start times.
func (h *Handler) HandleTimes(msg *tgbotapi.Message) {
	times, err := h.API.PreferredTimes(context.Background(), apiUser(msg.From))
	if err != nil {
		h.Log.Error("listing preferred times", zap.Int64("chat", msg.Chat.ID), zap.Error(err))
		h.reply(msg.Chat.ID, "Could not fetch your times, sorry.")
		return
	}
	if len(times) == 0 {
		h.reply(msg.Chat.ID, fmt.Sprintf("No preferred times yet, using the defaults: %s", strings.Join(h.DefaultTimes, ", ")))
		return
	}
	h.reply(msg.Chat.ID, "Your preferred start times:\n"+strings.Join(times, "\n"))
}

// HandleTimesAdd stores a new preferred start time remotely and refreshes
// the local watcher.
func (h *Handler) HandleTimesAdd(msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if _, err := time.Parse("15:04:05", arg); err != nil {
		h.reply(msg.Chat.ID, "Usage: /times_add HH:MM:SS (e.g. /times_add 17:30:00)")
		return
	}

	ctx := context.Background()
	if err := h.API.SaveTime(ctx, apiUser(msg.From), arg); err != nil {
		h.Log.Error("saving preferred time", zap.Int64("chat", msg.Chat.ID), zap.Error(err))
		h.reply(msg.Chat.ID, "Could not save that time, sorry.")
		return
	}

	h.syncWatcherTimes(ctx, msg)
	h.reply(msg.Chat.ID, fmt.Sprintf("Added %s to your preferred times.", arg))
}

// HandleTimesDel removes a preferred start time remotely and refreshes the
// local watcher.
func (h *Handler) HandleTimesDel(msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if _, err := time.Parse("15:04:05", arg); err != nil {
		h.reply(msg.Chat.ID, "Usage: /times_del HH:MM:SS")
		return
	}

	ctx := context.Background()
	if err := h.API.DeleteTime(ctx, apiUser(msg.From), arg); err != nil {
		h.Log.Error("deleting preferred time", zap.Int64("chat", msg.Chat.ID), zap.Error(err))
		h.reply(msg.Chat.ID, "Could not remove that time, sorry.")
		return
	}

	h.syncWatcherTimes(ctx, msg)
	h.reply(msg.Chat.ID, fmt.Sprintf("Removed %s from your preferred times.", arg))
}

// syncWatcherTimes mirrors the remote preferred times into the chat's
// watcher, if it has one, so the periodic check uses the fresh set
// without calling the bot API from the loop.
func (h *Handler) syncWatcherTimes(ctx context.Context, msg *tgbotapi.Message) {
	w, err := h.Store.Watcher(ctx, msg.Chat.ID)
	if err != nil || w == nil {
		return
	}

	times, err := h.API.PreferredTimes(ctx, apiUser(msg.From))
	if err != nil {
		h.Log.Warn("refreshing watcher times", zap.Int64("chat", msg.Chat.ID), zap.Error(err))
		return
	}

	w.DesiredTimes = times
	if err := h.Store.SaveWatcher(ctx, w); err != nil {
		h.Log.Warn("saving watcher times", zap.Int64("chat", msg.Chat.ID), zap.Error(err))
	}
}
