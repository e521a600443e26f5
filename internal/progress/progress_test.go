package progress

import (
	"strings"
	"testing"

	"github.com/Rosssaab/CryptoDataLoader/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type recordingSink struct {
	lines     []string
	chatDone  int
	priceDone int
}

func (r *recordingSink) Progress(message string)              { r.lines = append(r.lines, message) }
func (r *recordingSink) ChatCycleDone(domain.ChatRunResult)   { r.chatDone++ }
func (r *recordingSink) PriceCycleDone(domain.PriceRunResult) { r.priceDone++ }

func TestMultiFansOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	sink := Multi(a, b)

	sink.Progress("working")
	sink.ChatCycleDone(domain.ChatRunResult{})
	sink.PriceCycleDone(domain.PriceRunResult{})

	for _, r := range []*recordingSink{a, b} {
		if len(r.lines) != 1 || r.lines[0] != "working" {
			t.Fatalf("expected progress line forwarded, got %v", r.lines)
		}
		if r.chatDone != 1 || r.priceDone != 1 {
			t.Fatalf("expected cycle callbacks forwarded, got chat=%d price=%d", r.chatDone, r.priceDone)
		}
	}
}

func TestFormatChatSummary(t *testing.T) {
	got := FormatChatSummary(domain.ChatRunResult{
		CoinsProcessed:    12,
		MentionsCollected: 340,
		BatchesPersisted:  11,
		FailedBatches:     1,
		Errors:            []string{"boom"},
	})
	for _, want := range []string{"12 coins", "340 mentions", "11 batches", "1 failed", "1 errors"} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary %q missing %q", got, want)
		}
	}
}

type fakeBot struct {
	sent []string
}

func (f *fakeBot) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.sent = append(f.sent, what.(string))
	return &tele.Message{}, nil
}

func TestTelegramSinkSendsSummariesOnly(t *testing.T) {
	bot := &fakeBot{}
	sink := &TelegramSink{bot: bot, chat: tele.ChatID(42)}

	sink.Progress("noisy per-coin line")
	sink.ChatCycleDone(domain.ChatRunResult{CoinsProcessed: 3})
	sink.PriceCycleDone(domain.PriceRunResult{RecordsAdded: 5})

	if len(bot.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d: %v", len(bot.sent), bot.sent)
	}
	if !strings.Contains(bot.sent[0], "chat collection done") {
		t.Fatalf("unexpected first message %q", bot.sent[0])
	}
	if !strings.Contains(bot.sent[1], "price collection done") {
		t.Fatalf("unexpected second message %q", bot.sent[1])
	}
}
