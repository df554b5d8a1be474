package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"padel-bot/botapi"
)

// HandleAddClub searches clubs by name and offers the matches on an
// inline keyboard.
func (h *Handler) HandleAddClub(msg *tgbotapi.Message) {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		h.reply(msg.Chat.ID, "Usage: /add_club <name>")
		return
	}

	ctx := context.Background()
	clubs, err := h.API.FindClubs(ctx, apiUser(msg.From), name)
	if err != nil {
		h.Log.Error("searching clubs", zap.Int64("chat", msg.Chat.ID), zap.Error(err))
		h.reply(msg.Chat.ID, "Could not search clubs, sorry.")
		return
	}
	if len(clubs) == 0 {
		h.reply(msg.Chat.ID, fmt.Sprintf("No clubs found for %q.", name))
		return
	}

	h.sendClubKeyboard(ctx, msg.Chat.ID, clubs, "addclub", "Please, select a club:")
}

// HandleMyClubs lists the user's preferred clubs.
func (h *Handler) HandleMyClubs(msg *tgbotapi.Message) {
	ctx := context.Background()
	user := apiUser(msg.From)

	ids, err := h.API.PreferredClubs(ctx, user)
	if err != nil {
		h.Log.Error("listing preferred clubs", zap.Int64("chat", msg.Chat.ID), zap.Error(err))
		h.reply(msg.Chat.ID, "Could not fetch your clubs, sorry.")
		return
	}
	if len(ids) == 0 {
		h.reply(msg.Chat.ID, "You have no preferred clubs yet. Add one with /add_club <name>.")
		return
	}

	h.reply(msg.Chat.ID, fmt.Sprintf("You have %d preferred clubs:", len(ids)))
	for _, id := range ids {
		club, err := h.API.ClubInfo(ctx, user, id)
		if err != nil {
			h.Log.Warn("fetching club info", zap.String("club", id), zap.Error(err))
			continue
		}
		h.reply(msg.Chat.ID, club.Title)
	}
}

// HandleDelClub offers the user's preferred clubs for deletion.
func (h *Handler) HandleDelClub(msg *tgbotapi.Message) {
	ctx := context.Background()
	user := apiUser(msg.From)

	ids, err := h.API.PreferredClubs(ctx, user)
	if err != nil {
		h.Log.Error("listing preferred clubs", zap.Int64("chat", msg.Chat.ID), zap.Error(err))
		h.reply(msg.Chat.ID, "Could not fetch your clubs, sorry.")
		return
	}
	if len(ids) == 0 {
		h.reply(msg.Chat.ID, "You have no preferred clubs to remove.")
		return
	}

	clubs := make([]botapi.ClubSummary, 0, len(ids))
	for _, id := range ids {
		club, err := h.API.ClubInfo(ctx, user, id)
		if err != nil {
			h.Log.Warn("fetching club info", zap.String("club", id), zap.Error(err))
			continue
		}
		clubs = append(clubs, club)
	}

	h.sendClubKeyboard(ctx, msg.Chat.ID, clubs, "delclub", "Which club should I remove?")
}

// HandleAddClubCallback saves the club picked on the keyboard.
func (h *Handler) HandleAddClubCallback(cq *tgbotapi.CallbackQuery, indexStr string) {
	ctx := context.Background()

	club, ok := h.clubChoice(ctx, cq, indexStr)
	if !ok {
		return
	}

	if err := h.API.SaveClub(ctx, apiUser(cq.From), club.ID); err != nil {
		h.Log.Error("saving club", zap.String("club", club.ID), zap.Error(err))
		h.answerCallback(cq, "Could not save it, sorry 😢")
		return
	}

	h.answerCallback(cq, "Saved!")
	h.editMessage(cq, fmt.Sprintf("Saved %s", club.Title))
}

// HandleDelClubCallback deletes the club picked on the keyboard.
func (h *Handler) HandleDelClubCallback(cq *tgbotapi.CallbackQuery, indexStr string) {
	ctx := context.Background()

	club, ok := h.clubChoice(ctx, cq, indexStr)
	if !ok {
		return
	}

	if err := h.API.DeleteClub(ctx, apiUser(cq.From), club.ID); err != nil {
		h.Log.Error("deleting club", zap.String("club", club.ID), zap.Error(err))
		h.answerCallback(cq, "Could not remove it, sorry 😢")
		return
	}

	h.answerCallback(cq, "Removed!")
	h.editMessage(cq, fmt.Sprintf("Removed %s", club.Title))
}

// sendClubKeyboard caches the choices and sends an index-based keyboard.
// Callback data carries the index, not the club id: Telegram caps
// callback_data at 64 bytes and tenant ids are UUIDs.
func (h *Handler) sendClubKeyboard(ctx context.Context, chatID int64, clubs []botapi.ClubSummary, action, prompt string) {
	if err := h.Store.SaveClubChoices(ctx, chatID, clubs); err != nil {
		h.Log.Error("caching club choices", zap.Int64("chat", chatID), zap.Error(err))
		h.reply(chatID, "Something went wrong, try again later.")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(clubs))
	for i, club := range clubs {
		data := fmt.Sprintf("%s:%d", action, i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(club.Title, data)))
	}

	reply := tgbotapi.NewMessage(chatID, prompt)
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := h.Bot.Send(reply); err != nil {
		h.Log.Error("sending keyboard", zap.Int64("chat", chatID), zap.Error(err))
	}
}

// clubChoice resolves an index callback against the cached choices.
func (h *Handler) clubChoice(ctx context.Context, cq *tgbotapi.CallbackQuery, indexStr string) (botapi.ClubSummary, bool) {
	index, err := strconv.Atoi(indexStr)
	if err != nil {
		h.answerCallback(cq, "Unknown selection")
		return botapi.ClubSummary{}, false
	}

	clubs, err := h.Store.ClubChoices(ctx, cq.Message.Chat.ID)
	if err != nil {
		h.Log.Error("reading club choices", zap.Int64("chat", cq.Message.Chat.ID), zap.Error(err))
		h.answerCallback(cq, "Something went wrong, try again")
		return botapi.ClubSummary{}, false
	}
	if index < 0 || index >= len(clubs) {
		// keyboard expired (5 minute TTL) or stale message
		h.answerCallback(cq, "That keyboard expired, run the command again")
		return botapi.ClubSummary{}, false
	}
	return clubs[index], true
}

func (h *Handler) answerCallback(cq *tgbotapi.CallbackQuery, text string) {
	if _, err := h.Bot.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
		h.Log.Error("answering callback", zap.Error(err))
	}
}

func (h *Handler) editMessage(cq *tgbotapi.CallbackQuery, text string) {
	edit := tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID, text)
	if _, err := h.Bot.Send(edit); err != nil {
		h.Log.Error("editing message", zap.Error(err))
	}
}
