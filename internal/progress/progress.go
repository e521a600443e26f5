package progress

import (
	"fmt"
	"log"

	"github.com/Rosssaab/CryptoDataLoader/internal/domain"
)

// Sink receives human-readable progress lines and per-cycle counters
// from the collector. The collector calls it unconditionally; attach
// NopSink when no observer is wanted.
type Sink interface {
	Progress(message string)
	ChatCycleDone(result domain.ChatRunResult)
	PriceCycleDone(result domain.PriceRunResult)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Progress(string)                      {}
func (NopSink) ChatCycleDone(domain.ChatRunResult)   {}
func (NopSink) PriceCycleDone(domain.PriceRunResult) {}

// LogSink writes progress to the process log.
type LogSink struct{}

func (LogSink) Progress(message string) {
	log.Println(message)
}

func (LogSink) ChatCycleDone(result domain.ChatRunResult) {
	log.Println(FormatChatSummary(result))
}

func (LogSink) PriceCycleDone(result domain.PriceRunResult) {
	log.Println(FormatPriceSummary(result))
}

// Multi fans every call out to each attached sink.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

type multiSink []Sink

func (m multiSink) Progress(message string) {
	for _, s := range m {
		s.Progress(message)
	}
}

func (m multiSink) ChatCycleDone(result domain.ChatRunResult) {
	for _, s := range m {
		s.ChatCycleDone(result)
	}
}

func (m multiSink) PriceCycleDone(result domain.PriceRunResult) {
	for _, s := range m {
		s.PriceCycleDone(result)
	}
}

func FormatChatSummary(result domain.ChatRunResult) string {
	return fmt.Sprintf(
		"chat collection done: %d coins, %d mentions, %d batches persisted, %d failed, %d skipped, %d errors",
		result.CoinsProcessed, result.MentionsCollected, result.BatchesPersisted,
		result.FailedBatches, result.SkippedCoins, len(result.Errors),
	)
}

func FormatPriceSummary(result domain.PriceRunResult) string {
	return fmt.Sprintf(
		"price collection done: %d coins, %d records added, %d failed, %d errors",
		result.CoinsProcessed, result.RecordsAdded, result.FailedCoins, len(result.Errors),
	)
}
