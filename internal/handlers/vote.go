package handlers

import (
	"net/http"

	"panda/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// Pointers so that dir=0 passes the required check.
type voteRequest struct {
	PostID *uint `json:"post_id" binding:"required"`
	Dir    *int  `json:"dir" binding:"required"`
}

// Vote casts (dir=1) or withdraws (dir=0) the caller's vote on a post.
func (h *VoteHandler) Vote(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "post_id and dir are required")
		return
	}

	res, err := h.votes.Apply(c.Request.Context(), *req.PostID, user.ID, services.Direction(*req.Dir))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "successfully added vote"
	if res.Direction == services.DirectionDown {
		message = "successfully deleted vote"
	}
	c.JSON(http.StatusCreated, gin.H{"message": message, "votes": res.Votes})
}
