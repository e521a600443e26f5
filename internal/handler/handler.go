package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/Rosssaab/CryptoDataLoader/internal/domain"
	"github.com/Rosssaab/CryptoDataLoader/internal/scheduler"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Runner triggers a collection cycle outside the scheduled cadence.
type Runner interface {
	RunChatCycle(ctx context.Context) domain.ChatRunResult
	RunPriceCycle(ctx context.Context) domain.PriceRunResult
}

type StatusReader interface {
	Status() []scheduler.JobStatus
}

type PriceReader interface {
	Get(ctx context.Context, symbol string) (*domain.PriceSample, error)
}

type Handler struct {
	tracer    trace.Tracer
	collector Runner
	jobs      StatusReader
	prices    PriceReader
}

func New(tracer trace.Tracer, collector Runner, jobs StatusReader, prices PriceReader) *Handler {
	return &Handler{
		tracer:    tracer,
		collector: collector,
		jobs:      jobs,
		prices:    prices,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/status", h.Status)
	r.GET("/api/prices/:symbol", h.GetPrice)
	r.POST("/api/collect/chat", h.CollectChat)
	r.POST("/api/collect/prices", h.CollectPrices)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Status reports every scheduled job's timing state.
func (h *Handler) Status(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.status")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{"jobs": h.jobs.Status()})
}

// GetPrice returns the latest cached sample for a symbol.
func (h *Handler) GetPrice(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-price")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	sample, err := h.prices.Get(ctx, symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sample == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cached price for " + symbol})
		return
	}
	c.JSON(http.StatusOK, sample)
}

// CollectChat runs one chat-collection cycle now and returns its
// counters. The cycle itself never fails; anything that went wrong is
// inside the result.
func (h *Handler) CollectChat(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.collect-chat")
	defer span.End()

	result := h.collector.RunChatCycle(ctx)
	c.JSON(http.StatusOK, gin.H{
		"coins_processed":    result.CoinsProcessed,
		"mentions_collected": result.MentionsCollected,
		"batches_persisted":  result.BatchesPersisted,
		"failed_batches":     result.FailedBatches,
		"skipped_coins":      result.SkippedCoins,
		"errors":             result.Errors,
	})
}

// CollectPrices runs one price-collection cycle now.
func (h *Handler) CollectPrices(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.collect-prices")
	defer span.End()

	result := h.collector.RunPriceCycle(ctx)
	c.JSON(http.StatusOK, gin.H{
		"coins_processed": result.CoinsProcessed,
		"records_added":   result.RecordsAdded,
		"failed_coins":    result.FailedCoins,
		"errors":          result.Errors,
	})
}
