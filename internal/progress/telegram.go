package progress

import (
	"log"
	"time"

	"github.com/Rosssaab/CryptoDataLoader/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramSink posts cycle summaries to a Telegram chat. Per-item
// progress lines are dropped to keep the chat readable; summaries only.
type TelegramSink struct {
	bot  sender
	chat tele.ChatID
}

func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}
	return &TelegramSink{bot: b, chat: tele.ChatID(chatID)}, nil
}

func (s *TelegramSink) Progress(string) {}

func (s *TelegramSink) ChatCycleDone(result domain.ChatRunResult) {
	s.send(FormatChatSummary(result))
}

func (s *TelegramSink) PriceCycleDone(result domain.PriceRunResult) {
	s.send(FormatPriceSummary(result))
}

func (s *TelegramSink) send(message string) {
	if _, err := s.bot.Send(s.chat, message); err != nil {
		log.Printf("telegram sink: %v", err)
	}
}
