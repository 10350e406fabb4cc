package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studytracker/internal/middleware"
	"studytracker/internal/service"
)

type SummaryHandler struct {
	summaryService *service.SummaryService
}

type endDayRequest struct {
	Date              string `json:"date"`
	MathsProblems     int    `json:"mathsProblems"`
	PhysicsProblems   int    `json:"physicsProblems"`
	ChemistryProblems int    `json:"chemistryProblems"`
	TopicsCovered     string `json:"topicsCovered"`
	Notes             string `json:"notes"`
	SelfRating        int    `json:"selfRating"`
}

func NewSummaryHandler(summaryService *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

func (h *SummaryHandler) EndDay(c *gin.Context) {
	var req endDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}

	summary, apiErr := h.summaryService.EndDay(c.Request.Context(), middleware.UserID(c), service.EndDayInput{
		Date:              req.Date,
		MathsProblems:     req.MathsProblems,
		PhysicsProblems:   req.PhysicsProblems,
		ChemistryProblems: req.ChemistryProblems,
		TopicsCovered:     req.TopicsCovered,
		Notes:             req.Notes,
		SelfRating:        req.SelfRating,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// List returns the summaries of ?userId=, or of the caller when omitted.
func (h *SummaryHandler) List(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		userID = middleware.UserID(c)
	}

	summaries, apiErr := h.summaryService.List(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}
