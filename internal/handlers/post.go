package handlers

import (
	"net/http"

	"panda/internal/services"
	"panda/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

type postRequest struct {
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content" binding:"required"`
	Published *bool  `json:"published"`
}

func (r postRequest) input() services.PostInput {
	return services.PostInput{Title: r.Title, Content: r.Content, Published: r.Published}
}

// List handles GET /posts?limit=&offset=&search=
func (h *PostHandler) List(c *gin.Context) {
	limit, err := utils.QueryInt(c.Query("limit"), services.DefaultListLimit)
	if err != nil || limit < 1 {
		badRequest(c, "limit must be a positive integer")
		return
	}
	offset, err := utils.QueryInt(c.Query("offset"), 0)
	if err != nil || offset < 0 {
		badRequest(c, "offset must be a non-negative integer")
		return
	}

	posts, err := h.posts.List(c.Request.Context(), services.ListFilter{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title and content are required")
		return
	}

	post, err := h.posts.Create(c.Request.Context(), req.input(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// Latest always answers 200; an empty store is reported in the body.
func (h *PostHandler) Latest(c *gin.Context) {
	post, err := h.posts.Latest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if post == nil {
		c.JSON(http.StatusOK, gin.H{"post": nil, "message": "There is no post yet."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *PostHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		badRequest(c, "invalid post id")
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		badRequest(c, "invalid post id")
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title and content are required")
		return
	}

	post, err := h.posts.Update(c.Request.Context(), id, req.input(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		badRequest(c, "invalid post id")
		return
	}

	if err := h.posts.Delete(c.Request.Context(), id, user); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
