package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/herdbot/internal/assistant"
	"github.com/xaenox/herdbot/pkg/config"
)

// maxMessageLength is Telegram's limit on the text of one message.
const maxMessageLength = 4096

// historyPreview and queryPreview cap how much of each stored reply and
// question /history shows, keeping the listing under maxMessageLength.
const (
	historyPreview = 200
	queryPreview   = 100
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api          *tgbotapi.BotAPI
	sender       sender
	assistant    *assistant.Assistant
	timeout      int
	historyLimit int
	logger       *zap.Logger

	mu     sync.Mutex
	queues map[int64]*chatQueue
	wg     sync.WaitGroup
}

// chatQueue holds the messages of one chat that wait for its worker.
type chatQueue struct {
	pending []*tgbotapi.Message
}

func New(cfg config.TelegramConfig, a *assistant.Assistant, historyLimit int, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = cfg.Debug

	b := newBot(api, a, historyLimit, logger)
	b.api = api
	b.timeout = cfg.Timeout
	return b, nil
}

func newBot(s sender, a *assistant.Assistant, historyLimit int, logger *zap.Logger) *Bot {
	if historyLimit <= 0 {
		historyLimit = 5
	}
	return &Bot{
		sender:       s,
		assistant:    a,
		timeout:      60,
		historyLimit: historyLimit,
		logger:       logger,
		queues:       make(map[int64]*chatQueue),
	}
}

// Start long-polls Telegram until ctx is cancelled, then waits for the
// messages already queued.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.timeout

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("Bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				b.Wait()
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.dispatch(ctx, update.Message)
		}
	}
}

// dispatch queues message for its chat. Each chat has at most one worker,
// so its turns run one at a time in arrival order while different chats
// run in parallel.
func (b *Bot) dispatch(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	b.mu.Lock()
	if q, ok := b.queues[chatID]; ok {
		q.pending = append(q.pending, message)
		b.mu.Unlock()
		return
	}
	q := &chatQueue{pending: []*tgbotapi.Message{message}}
	b.queues[chatID] = q
	b.wg.Add(1)
	b.mu.Unlock()

	go b.drain(ctx, chatID, q)
}

func (b *Bot) drain(ctx context.Context, chatID int64, q *chatQueue) {
	defer b.wg.Done()
	for {
		b.mu.Lock()
		if len(q.pending) == 0 {
			delete(b.queues, chatID)
			b.mu.Unlock()
			return
		}
		message := q.pending[0]
		q.pending = q.pending[1:]
		b.mu.Unlock()

		b.handleMessage(ctx, message)
	}
}

// Wait blocks until every queued message has been handled.
func (b *Bot) Wait() {
	b.wg.Wait()
}

func sessionID(chatID int64) string {
	return fmt.Sprintf("tg-%d", chatID)
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	content := message.Text
	if message.Caption != "" {
		content = message.Caption
	}
	if strings.TrimSpace(content) == "" {
		b.sendMessage(message.Chat.ID, "Please send your question as text.")
		return
	}

	req := assistant.Request{
		SessionID: sessionID(message.Chat.ID),
		Text:      content,
	}
	if message.From != nil {
		req.UserID = message.From.ID
		req.Locale = message.From.LanguageCode
	}

	turn := b.assistant.Handle(ctx, req)
	if turn.Err != nil {
		b.logger.Warn("Answered with fallback",
			zap.Error(turn.Err),
			zap.Int64("chat_id", message.Chat.ID))
	}

	b.sendReply(message.Chat.ID, message.MessageID, turn.Reply)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "reset":
		b.handleReset(message)
	case "forget":
		b.handleForget(ctx, message)
	case "history":
		b.handleHistory(ctx, message)
	case "breeds":
		b.handleBreeds(message)
	case "breed":
		b.handleBreed(message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to HerdBot! 🐄
Ask me about Indian and exotic cattle breeds: their origin, feeding and care, breeding, and diseases.

I remember the breed and topics we talked about, so you can ask follow-up questions.
Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/reset - Forget the current breed and topics
/forget - Reset and delete your stored questions
/history - Show your recent questions
/breeds - List the breeds I know
/breed <name> - Check how I understand a breed name

Example questions:
- Tell me about Gir origin
- What about feeding?
- How to prevent mastitis in Sahiwal`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleReset(message *tgbotapi.Message) {
	b.assistant.CloseSession(sessionID(message.Chat.ID))
	b.sendMessage(message.Chat.ID, "Conversation reset. Which breed would you like to talk about?")
}

func (b *Bot) handleForget(ctx context.Context, message *tgbotapi.Message) {
	if err := b.assistant.ForgetSession(ctx, sessionID(message.Chat.ID)); err != nil {
		b.logger.Error("Failed to forget session",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't delete your history. Please try again.")
		return
	}
	b.sendMessage(message.Chat.ID, "Done. I've forgotten our conversation.")
}

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	messages, err := b.assistant.History(ctx, sessionID(message.Chat.ID), b.historyLimit)
	if err != nil {
		b.logger.Error("Failed to get session messages",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't retrieve your message history.")
		return
	}

	if len(messages) == 0 {
		b.sendMessage(message.Chat.ID, "You don't have any messages yet.")
		return
	}

	response := "*Your recent questions:*\n\n"
	for _, msg := range messages {
		if msg.Breed != "" {
			response += fmt.Sprintf("*%s*", escapeMarkdown(msg.Breed))
			if len(msg.Topics) > 0 {
				tags := make([]string, len(msg.Topics))
				for i, topic := range msg.Topics {
					tags[i] = escapeMarkdown("#" + topic)
				}
				response += " " + strings.Join(tags, " ")
			}
			response += "\n"
		}
		response += fmt.Sprintf("_%s_\n", escapeMarkdown(truncate(msg.Query, queryPreview)))
		response += escapeMarkdown(truncate(msg.Response, historyPreview)) + "\n\n"
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, response)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send history message",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) handleBreeds(message *tgbotapi.Message) {
	response := "*Breeds I know:*\n"
	for _, breed := range b.assistant.Breeds() {
		response += escapeMarkdown("- "+breed) + "\n"
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, response)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send breeds message",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) handleBreed(message *tgbotapi.Message) {
	name := strings.TrimSpace(message.CommandArguments())
	if name == "" {
		b.sendMessage(message.Chat.ID, "Usage: /breed <name>")
		return
	}

	breed, ok := b.assistant.SuggestBreed(name)
	if !ok {
		b.sendMessage(message.Chat.ID, fmt.Sprintf("I don't recognize %q. Use /breeds to see the list.", name))
		return
	}
	b.sendMessage(message.Chat.ID, fmt.Sprintf("I understand %q as %s.", name, breed))
}

// escapeMarkdown escapes the characters MarkdownV2 treats as markup.
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}

func truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "…"
}

// splitMessage cuts text into chunks Telegram accepts, preferring line breaks.
func splitMessage(text string, limit int) []string {
	var chunks []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 || len(chunks) == 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func (b *Bot) sendReply(chatID int64, replyToID int, text string) {
	for i, chunk := range splitMessage(text, maxMessageLength) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if i == 0 {
			msg.ReplyToMessageID = replyToID
		}
		if _, err := b.sender.Send(msg); err != nil {
			b.logger.Error("Failed to send reply",
				zap.Error(err),
				zap.Int64("chat_id", chatID))
			return
		}
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
