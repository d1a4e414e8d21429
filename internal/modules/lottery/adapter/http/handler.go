// Package http exposes the lottery round engine over HTTP with gin.
package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Allen-Saji/sui-lotto-contract/internal/modules/lottery/domain"
	"github.com/Allen-Saji/sui-lotto-contract/internal/modules/lottery/usecase"
)

// CapabilityChecker gates the admin-only routes
type CapabilityChecker interface {
	HasAdminCapability(token string) bool
}

// Handler handles HTTP requests for the lottery module
type Handler struct {
	uc   *usecase.RoundUseCase
	caps CapabilityChecker
}

// NewHandler creates a new HTTP handler
func NewHandler(uc *usecase.RoundUseCase, caps CapabilityChecker) *Handler {
	return &Handler{uc: uc, caps: caps}
}

// RegisterRoutes registers the lottery routes on the given group
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	rounds := router.Group("/rounds")
	rounds.GET("/:id", h.GetRound)
	rounds.POST("/:id/tickets", h.BuyTickets)
	rounds.POST("/:id/refund", h.Refund)

	admin := rounds.Group("")
	admin.Use(h.AdminAuth())
	admin.POST("", h.CreateRound)
	admin.POST("/:id/draw", h.Draw)
}

// AdminAuth rejects requests without a valid admin capability token in
// the Authorization header. The raw token stays on the context; the
// use case re-verifies it so authorization is enforced even for
// callers that bypass HTTP.
func (h *Handler) AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if !h.caps.HasAdminCapability(token) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": domain.ErrUnauthorized.Error()})
			return
		}
		c.Set("admin_token", token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

// DTOs
type createRoundRequest struct {
	TicketPrice int64     `json:"ticket_price" binding:"required"`
	Deadline    time.Time `json:"deadline" binding:"required"`
}

type buyTicketsRequest struct {
	Buyer   string `json:"buyer" binding:"required"`
	Payment int64  `json:"payment" binding:"required"`
}

type refundRequest struct {
	Claimant string `json:"claimant" binding:"required"`
}

// CreateRound handles POST /rounds
func (h *Handler) CreateRound(c *gin.Context) {
	var req createRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.uc.CreateRound(c.Request.Context(), c.GetString("admin_token"), req.TicketPrice, req.Deadline)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// BuyTickets handles POST /rounds/:id/tickets
func (h *Handler) BuyTickets(c *gin.Context) {
	var req buyTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tickets, err := h.uc.BuyTickets(c.Request.Context(), c.Param("id"), req.Buyer, req.Payment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"round_id": c.Param("id"), "buyer": req.Buyer, "tickets": tickets})
}

// Draw handles POST /rounds/:id/draw
func (h *Handler) Draw(c *gin.Context) {
	settlement, err := h.uc.Draw(c.Request.Context(), c.Param("id"), c.GetString("admin_token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"round_id":         c.Param("id"),
		"winners":          settlement.Winners,
		"total_prize":      settlement.TotalPrize,
		"prize_per_winner": settlement.PrizePerWinner,
		"dust":             settlement.Dust,
		"admin_fee":        settlement.AdminFee,
	})
}

// Refund handles POST /rounds/:id/refund
func (h *Handler) Refund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tickets, amount, err := h.uc.Refund(c.Request.Context(), c.Param("id"), req.Claimant)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"round_id": c.Param("id"),
		"claimant": req.Claimant,
		"tickets":  tickets,
		"amount":   amount,
	})
}

// GetRound handles GET /rounds/:id
func (h *Handler) GetRound(c *gin.Context) {
	view, err := h.uc.GetRound(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// respondError maps domain sentinels onto HTTP status codes. Every
// rejection is explicit; unknown errors surface as 500 without detail
// leakage.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrRoundNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidDeadline),
		errors.Is(err, domain.ErrInvalidTicketPrice):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrRoundNotOpen),
		errors.Is(err, domain.ErrDeadlinePassed),
		errors.Is(err, domain.ErrRoundAlreadyCompleted),
		errors.Is(err, domain.ErrDeadlineNotReached),
		errors.Is(err, domain.ErrNotEnoughParticipants),
		errors.Is(err, domain.ErrRefundNotAvailable),
		errors.Is(err, domain.ErrNotAParticipant):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
