package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"tripdesk/internal/app/commands"
	"tripdesk/internal/app/dto"
	reviewapp "tripdesk/internal/app/handlers/reviews"
	"tripdesk/internal/app/queries"
)

type ReviewHTTP interface {
	ListForListing(c *gin.Context)
	Submit(c *gin.Context)
	ListForModeration(c *gin.Context)
	SetStatus(c *gin.Context)
	Delete(c *gin.Context)
}

type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type submitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

type reviewStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h ReviewHandler) ListForListing(c *gin.Context) {
	query := reviewapp.ListListingReviewsQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[reviewapp.ListListingReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Submit files a review as the signed-in user; the display name comes from
// the token, not the body.
func (h ReviewHandler) Submit(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := reviewapp.SubmitReviewCommand{
		UserID:     session.UserID,
		AuthorName: session.FullName,
		ListingID:  c.Param("id"),
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	result, err := commands.Dispatch[reviewapp.SubmitReviewCommand, *dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReviewHandler) ListForModeration(c *gin.Context) {
	query := reviewapp.ListReviewsQuery{
		ListingID: strings.TrimSpace(c.Query("listing_id")),
		Status:    strings.TrimSpace(c.Query("status")),
	}
	result, err := queries.Ask[reviewapp.ListReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewHandler) SetStatus(c *gin.Context) {
	var req reviewStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := reviewapp.ModerateReviewCommand{ReviewID: c.Param("id"), Status: req.Status}
	result, err := commands.Dispatch[reviewapp.ModerateReviewCommand, *dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewHandler) Delete(c *gin.Context) {
	cmd := reviewapp.DeleteReviewCommand{ReviewID: c.Param("id")}
	if _, err := commands.Dispatch[reviewapp.DeleteReviewCommand, *dto.ReviewRemoval](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ ReviewHTTP = ReviewHandler{}
