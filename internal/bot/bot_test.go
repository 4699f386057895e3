package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xaenox/herdbot/internal/assistant"
	"github.com/xaenox/herdbot/internal/conversation"
	"github.com/xaenox/herdbot/internal/ethics"
	"github.com/xaenox/herdbot/internal/storage"
	"github.com/xaenox/herdbot/internal/vocabulary"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func (f *fakeSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

type echoCompleter struct {
	mu      sync.Mutex
	prompts []string
	// delay holds back the first call only
	delay time.Duration
}

func (e *echoCompleter) Complete(_ context.Context, prompt string) (string, error) {
	e.mu.Lock()
	first := len(e.prompts) == 0
	e.prompts = append(e.prompts, prompt)
	e.mu.Unlock()

	if first && e.delay > 0 {
		time.Sleep(e.delay)
	}
	return "answer", nil
}

func newTestBot(t *testing.T) (*Bot, *fakeSender, *echoCompleter) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	c := &echoCompleter{}
	a := assistant.New(vocabulary.MustDefault(), c, conversation.NewRegistry(time.Hour, logger),
		storage.NewMemoryStorage(), assistant.DefaultConfig(), logger)
	s := &fakeSender{}
	return newBot(s, a, 3, logger), s, c
}

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 42,
		From:      &tgbotapi.User{ID: 7, LanguageCode: "en"},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}
}

func commandMessage(chatID int64, text string) *tgbotapi.Message {
	msg := textMessage(chatID, text)
	command := strings.SplitN(text, " ", 2)[0]
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}}
	return msg
}

func TestTextMessageGetsAnswer(t *testing.T) {
	b, s, c := newTestBot(t)

	b.handleMessage(context.Background(), textMessage(100, "Tell me about Gir origin"))

	reply := s.last(t)
	assert.Equal(t, "answer", reply.Text)
	assert.Equal(t, int64(100), reply.ChatID)
	assert.Equal(t, 42, reply.ReplyToMessageID)
	require.Len(t, c.prompts, 1)
	assert.Contains(t, c.prompts[0], "origin and history of the Gir breed")
	assert.Equal(t, "Gir", b.assistant.State("tg-100").Breed)
}

func TestTurnsOfOneChatRunInArrivalOrder(t *testing.T) {
	b, s, c := newTestBot(t)
	c.delay = 50 * time.Millisecond
	ctx := context.Background()

	b.dispatch(ctx, textMessage(100, "Tell me about Gir"))
	b.dispatch(ctx, textMessage(100, "and Jersey feeding?"))
	b.dispatch(ctx, textMessage(200, "Sahiwal vaccination"))
	b.Wait()

	assert.Equal(t, "Jersey", b.assistant.State("tg-100").Breed)
	assert.Equal(t, "Sahiwal", b.assistant.State("tg-200").Breed)

	c.mu.Lock()
	var chat100 []string
	for _, p := range c.prompts {
		if !strings.Contains(p, "Sahiwal") {
			chat100 = append(chat100, p)
		}
	}
	c.mu.Unlock()
	require.Len(t, chat100, 2)
	assert.Contains(t, chat100[0], "User question: Tell me about Gir")
	assert.Contains(t, chat100[1], "User question: and Jersey feeding?")

	s.mu.Lock()
	assert.Len(t, s.sent, 3)
	s.mu.Unlock()
}

func TestHistoryFitsInOneMessage(t *testing.T) {
	b, s, _ := newTestBot(t)
	ctx := context.Background()

	long := "Gir " + strings.Repeat("why.", 1500)
	for i := 0; i < 5; i++ {
		b.handleMessage(ctx, textMessage(100, long))
	}
	b.handleMessage(ctx, commandMessage(100, "/history"))

	reply := s.last(t)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, reply.ParseMode)
	assert.LessOrEqual(t, utf8.RuneCountInString(reply.Text), maxMessageLength)
	assert.Contains(t, reply.Text, "…")
}

func TestRefusedMessage(t *testing.T) {
	b, s, c := newTestBot(t)

	b.handleMessage(context.Background(), textMessage(100, "Is Holstein good for eating"))

	assert.Equal(t, ethics.RefusalMessage, s.last(t).Text)
	assert.Empty(t, c.prompts)
}

func TestEmptyMessageIsNotForwarded(t *testing.T) {
	b, s, c := newTestBot(t)

	msg := textMessage(100, "")
	b.handleMessage(context.Background(), msg)

	assert.Equal(t, "Please send your question as text.", s.last(t).Text)
	assert.Empty(t, c.prompts)
}

func TestResetCommand(t *testing.T) {
	b, s, _ := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, textMessage(100, "Sahiwal feeding"))
	require.Equal(t, "Sahiwal", b.assistant.State("tg-100").Breed)

	b.handleMessage(ctx, commandMessage(100, "/reset"))

	assert.Contains(t, s.last(t).Text, "Conversation reset")
	assert.False(t, b.assistant.State("tg-100").HasBreed())
}

func TestHistoryCommand(t *testing.T) {
	b, s, _ := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, commandMessage(100, "/history"))
	assert.Equal(t, "You don't have any messages yet.", s.last(t).Text)

	b.handleMessage(ctx, textMessage(100, "Tell me about Gir origin"))
	b.handleMessage(ctx, commandMessage(100, "/history"))

	reply := s.last(t)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, reply.ParseMode)
	assert.Contains(t, reply.Text, "*Gir*")
	assert.Contains(t, reply.Text, `\#general`)
	assert.Contains(t, reply.Text, "_Tell me about Gir origin_")
}

func TestForgetCommand(t *testing.T) {
	b, s, _ := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, textMessage(100, "Gir feeding"))
	b.handleMessage(ctx, commandMessage(100, "/forget"))
	assert.Equal(t, "Done. I've forgotten our conversation.", s.last(t).Text)

	b.handleMessage(ctx, commandMessage(100, "/history"))
	assert.Equal(t, "You don't have any messages yet.", s.last(t).Text)
	assert.False(t, b.assistant.State("tg-100").HasBreed())
}

func TestBreedsCommand(t *testing.T) {
	b, s, _ := newTestBot(t)

	b.handleMessage(context.Background(), commandMessage(100, "/breeds"))

	reply := s.last(t)
	assert.Contains(t, reply.Text, `\- Red Sindhi`)
	assert.Contains(t, reply.Text, `\- Murrah`)
}

func TestBreedCommand(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"misspelled", "/breed holstien", `I understand "holstien" as Holstein.`},
		{"unknown", "/breed zebra", `I don't recognize "zebra". Use /breeds to see the list.`},
		{"missing argument", "/breed", "Usage: /breed <name>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, s, _ := newTestBot(t)
			b.handleMessage(context.Background(), commandMessage(100, tt.text))
			assert.Equal(t, tt.want, s.last(t).Text)
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	b, s, _ := newTestBot(t)

	b.handleMessage(context.Background(), commandMessage(100, "/tags"))

	assert.Equal(t, "Unknown command. Use /help to see available commands.", s.last(t).Text)
}

func TestSendFailureIsLogged(t *testing.T) {
	b, s, _ := newTestBot(t)
	s.err = errors.New("telegram down")

	assert.NotPanics(t, func() {
		b.handleMessage(context.Background(), commandMessage(100, "/start"))
	})
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	chunks := splitMessage("aaaa\nbbbb\ncccc", 10)
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cccc"}, chunks)

	chunks = splitMessage(strings.Repeat("x", 25), 10)
	assert.Equal(t, []string{"xxxxxxxxxx", "xxxxxxxxxx", "xxxxx"}, chunks)
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `\#general \- ok\.`, escapeMarkdown("#general - ok."))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "गाय…", truncate("गायीला", 3))
}
