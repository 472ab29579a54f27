package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/moviefinder/internal/metadata/tmdb"
	"github.com/vadimtrunov/moviefinder/internal/search"
)

const (
	unauthorizedMsg = "Sorry, you are not authorized to use this bot."
	welcomeMsg      = "Welcome to MovieFinder! Send me a movie title and I'll search TMDb for it."
	resetMsg        = "Search reset. Send a title to start over."
	searchingMsg    = "🔎 Searching…"
	staleResultMsg  = "This movie is no longer shown."
	outdatedMsg     = "These results are outdated. Send a new search."
)

// handleMessage processes an incoming text message. Every non-command text
// is submitted as a new query.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Text == "" {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	b.logger.Debug("received message",
		slog.Int64("user_id", userID),
	)

	if !b.sessions.isAllowed(userID) {
		b.sendText(chatID, unauthorizedMsg)
		return
	}

	switch strings.TrimSpace(msg.Text) {
	case "/start":
		b.sendText(chatID, welcomeMsg)
		return
	case "/reset":
		b.sessions.reset(chatID)
		b.sendText(chatID, resetMsg)
		return
	}

	cs := b.sessions.get(chatID)
	cs.mu.Lock()
	req, notices := cs.search.Submit(msg.Text)
	if req == nil {
		cs.mu.Unlock()
		b.sendNotices(chatID, notices)
		return
	}
	cs.search.Close()
	b.deleteDetail(chatID, cs)
	if cs.searching {
		// The previous query never got its results.
		b.deleteMessage(chatID, cs.resultsID)
	}
	cs.resultsID = b.sendText(chatID, searchingMsg)
	cs.searching = cs.resultsID != 0
	cs.mu.Unlock()

	b.fetch(ctx, chatID, cs, *req)
}

// handleCallback processes inline keyboard callback queries.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.From == nil || cq.Message == nil {
		b.answerCallback(cq.ID, "")
		return
	}
	userID := cq.From.ID
	chatID := cq.Message.Chat.ID

	b.logger.Debug("received callback",
		slog.Int64("user_id", userID),
		slog.String("data", cq.Data),
	)

	if !b.sessions.isAllowed(userID) {
		b.answerCallback(cq.ID, unauthorizedMsg)
		return
	}

	cs := b.sessions.get(chatID)
	var (
		req    *search.Request
		answer string
	)
	switch {
	case cq.Data == cbClose:
		b.closeDetail(chatID, cq.Message.MessageID, cs)
	case strings.HasPrefix(cq.Data, cbSelect):
		answer = b.selectMovie(chatID, cs, strings.TrimPrefix(cq.Data, cbSelect))
	case strings.HasPrefix(cq.Data, cbPage):
		req, answer = b.changePage(cq.Message.MessageID, cs, strings.TrimPrefix(cq.Data, cbPage))
	}
	b.answerCallback(cq.ID, answer)

	if req != nil {
		b.fetch(ctx, chatID, cs, *req)
	}
}

// changePage moves the chat's session to the requested page. Only the
// current results message may paginate.
func (b *Bot) changePage(messageID int, cs *chatSession, arg string) (*search.Request, string) {
	page, err := strconv.Atoi(arg)
	if err != nil {
		return nil, ""
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if messageID != cs.resultsID {
		return nil, outdatedMsg
	}
	return cs.search.ChangePage(page), ""
}

// selectMovie opens the detail view for a movie on the displayed page.
func (b *Bot) selectMovie(chatID int64, cs *chatSession, arg string) string {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return staleResultMsg
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, m := range cs.search.Items() {
		if m.ID != id {
			continue
		}
		cs.search.Select(m)
		b.deleteDetail(chatID, cs)
		cs.detailID = b.sendDetails(chatID, m)
		return ""
	}
	return staleResultMsg
}

func (b *Bot) closeDetail(chatID int64, messageID int, cs *chatSession) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if messageID == cs.detailID {
		cs.search.Close()
		cs.detailID = 0
	}
	b.deleteMessage(chatID, messageID)
}

// fetch runs req outside the chat lock and applies the outcome if it is
// still the latest request for the chat.
func (b *Bot) fetch(ctx context.Context, chatID int64, cs *chatSession, req search.Request) {
	b.sendTyping(chatID)

	page, err := b.searcher.Search(ctx, req.Query, req.Page)
	if err != nil {
		b.logger.Warn("search failed",
			slog.Int64("chat_id", chatID),
			slog.String("query", req.Query),
			slog.Int("page", req.Page),
			slog.String("error", err.Error()),
		)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	applied, notices := cs.search.Resolve(req, page, err)
	if !applied {
		b.logger.Debug("dropping superseded search response",
			slog.Int64("chat_id", chatID),
			slog.Uint64("seq", req.Seq),
		)
		return
	}
	b.renderResults(chatID, cs)
	b.sendNotices(chatID, notices)
}

// renderResults updates the results message in place, or sends a new one if
// there is none. Must be called with cs.mu held.
func (b *Bot) renderResults(chatID int64, cs *chatSession) {
	s := cs.search
	text, kb := formatResults(s), buildResultsKeyboard(s)
	if s.State() == search.StateError {
		text = EscapeMdV2("⚠️ " + errorText(s.Err()))
		kb = retryKeyboard(s.Page())
	}
	cs.searching = false

	if cs.resultsID == 0 {
		cs.resultsID = b.sendMarkdown(chatID, text, kb)
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, cs.resultsID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	edit.ReplyMarkup = kb
	if _, err := b.api.Send(edit); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return
		}
		b.logger.Warn("failed to edit results message, sending a new one",
			slog.String("error", err.Error()),
		)
		cs.resultsID = b.sendMarkdown(chatID, text, kb)
	}
}

// sendDetails sends the detail card, as a poster photo when one exists.
func (b *Bot) sendDetails(chatID int64, m tmdb.Movie) int {
	caption := formatDetails(m)

	if url := tmdb.PosterURL(m.PosterPath, "w500"); url != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url))
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeMarkdownV2
		photo.ReplyMarkup = closeKeyboard()
		sent, err := b.api.Send(photo)
		if err == nil {
			return sent.MessageID
		}
		b.logger.Debug("failed to send poster, falling back to text",
			slog.Int("tmdb_id", m.ID),
			slog.String("error", err.Error()),
		)
	}

	kb := closeKeyboard()
	return b.sendMarkdown(chatID, caption, &kb)
}

func (b *Bot) sendNotices(chatID int64, notices []search.Notice) {
	for _, n := range notices {
		prefix := "ℹ️ "
		if n.Kind == search.NoticeError {
			prefix = "⚠️ "
		}
		b.sendText(chatID, prefix+n.Text)
	}
}

// sendMarkdown sends a MarkdownV2 message and returns its ID, or 0 on failure.
func (b *Bot) sendMarkdown(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Error("failed to send message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
		return 0
	}
	return sent.MessageID
}

// sendText sends a plain text message and returns its ID, or 0 on failure.
func (b *Bot) sendText(chatID int64, text string) int {
	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		b.logger.Error("failed to send message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
		return 0
	}
	return sent.MessageID
}

func (b *Bot) deleteDetail(chatID int64, cs *chatSession) {
	if cs.detailID == 0 {
		return
	}
	b.deleteMessage(chatID, cs.detailID)
	cs.detailID = 0
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.logger.Debug("failed to delete message",
			slog.Int("message_id", messageID),
			slog.String("error", err.Error()),
		)
	}
}

func (b *Bot) sendTyping(chatID int64) {
	b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)) //nolint:errcheck // best-effort typing indicator
}

func (b *Bot) answerCallback(id, text string) {
	b.api.Request(tgbotapi.NewCallback(id, text)) //nolint:errcheck // best-effort ack
}
