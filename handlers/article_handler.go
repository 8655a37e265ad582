package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"writium/helper"
	"writium/middleware"
	"writium/models"
	"writium/services"
)

const (
	maxPageLimit        = 100
	defaultVersionLimit = 50
)

type ArticleHandler struct {
	articleService services.ArticleService
	httpHelper     *helper.HTTPHelper
	baseURL        string
}

func NewArticleHandler(articleService services.ArticleService, httpHelper *helper.HTTPHelper, baseURL string) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		httpHelper:     httpHelper,
		baseURL:        strings.TrimRight(baseURL, "/"),
	}
}

func (h *ArticleHandler) List(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var params models.ArticleListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.httpHelper.SendBadRequest(c, "Invalid query parameters")
		return
	}
	if params.Limit < 1 {
		params.Limit = 50
	}
	if params.Limit > maxPageLimit {
		params.Limit = maxPageLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	articles, total, err := h.articleService.List(actor, params)
	if err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"page":     h.httpHelper.Paging(params.Limit, params.Offset, total),
	})
}

func (h *ArticleHandler) Get(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id := c.Param("id")
	if !models.IsUUID(id) {
		h.httpHelper.SendBadRequest(c, "Invalid ID")
		return
	}

	article, err := h.articleService.Get(actor, id)
	if err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

func (h *ArticleHandler) Create(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var req models.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.httpHelper.SendBadRequest(c, "Invalid request body")
		return
	}

	article, err := h.articleService.Create(actor, req)
	if err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"article": article})
}

func (h *ArticleHandler) Update(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id := c.Param("id")
	if !models.IsUUID(id) {
		h.httpHelper.SendBadRequest(c, "Invalid ID")
		return
	}

	req, ok := h.bindUpdate(c)
	if !ok {
		return
	}

	article, err := h.articleService.Update(actor, id, req)
	if err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

// bindUpdate decodes a partial update. An empty body is a valid request with
// no fields, which downstream treats as a no-op.
func (h *ArticleHandler) bindUpdate(c *gin.Context) (models.UpdateArticleRequest, bool) {
	var req models.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.httpHelper.SendBadRequest(c, "Invalid request body")
		return req, false
	}
	return req, true
}

func (h *ArticleHandler) Delete(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id := c.Param("id")
	if !models.IsUUID(id) {
		h.httpHelper.SendBadRequest(c, "Invalid ID")
		return
	}

	if err := h.articleService.Delete(actor, id); err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ArticleHandler) GetShared(c *gin.Context) {
	article, err := h.articleService.GetShared(c.Param("token"))
	if err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

func (h *ArticleHandler) UpdateShared(c *gin.Context) {
	req, ok := h.bindUpdate(c)
	if !ok {
		return
	}

	article, err := h.articleService.UpdateShared(c.Param("token"), req)
	if err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

func (h *ArticleHandler) MintShareToken(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id := c.Param("id")
	if !models.IsUUID(id) {
		h.httpHelper.SendBadRequest(c, "Invalid ID")
		return
	}

	token, err := h.articleService.MintShareToken(actor, id)
	if err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"share_token": token,
		"share_url":   h.baseURL + "?share=" + token,
	})
}

func (h *ArticleHandler) RevokeShareToken(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id := c.Param("id")
	if !models.IsUUID(id) {
		h.httpHelper.SendBadRequest(c, "Invalid ID")
		return
	}

	if err := h.articleService.RevokeShareToken(actor, id); err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ArticleHandler) ListVersions(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id := c.Param("id")
	if !models.IsUUID(id) {
		h.httpHelper.SendBadRequest(c, "Invalid ID")
		return
	}

	limit := defaultVersionLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	versions, err := h.articleService.ListVersions(actor, id, limit)
	if err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

func (h *ArticleHandler) GetVersion(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id, versionID := c.Param("id"), c.Param("versionId")
	if !models.IsUUID(id) || !models.IsUUID(versionID) {
		h.httpHelper.SendBadRequest(c, "Invalid ID")
		return
	}

	version, err := h.articleService.GetVersion(actor, id, versionID)
	if err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": version})
}

func (h *ArticleHandler) RestoreVersion(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id, versionID := c.Param("id"), c.Param("versionId")
	if !models.IsUUID(id) || !models.IsUUID(versionID) {
		h.httpHelper.SendBadRequest(c, "Invalid ID")
		return
	}

	article, err := h.articleService.RestoreVersion(actor, id, versionID)
	if err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

func (h *ArticleHandler) DeleteVersion(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id, versionID := c.Param("id"), c.Param("versionId")
	if !models.IsUUID(id) || !models.IsUUID(versionID) {
		h.httpHelper.SendBadRequest(c, "Invalid ID")
		return
	}

	if err := h.articleService.DeleteVersion(actor, id, versionID); err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ArticleHandler) ClearVersions(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id := c.Param("id")
	if !models.IsUUID(id) {
		h.httpHelper.SendBadRequest(c, "Invalid ID")
		return
	}

	if err := h.articleService.ClearVersions(actor, id); err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ArticleHandler) ListComments(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id := c.Param("id")
	if !models.IsUUID(id) {
		h.httpHelper.SendBadRequest(c, "Invalid ID")
		return
	}

	comments, err := h.articleService.ListComments(actor, id)
	if err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *ArticleHandler) AddComment(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id := c.Param("id")
	if !models.IsUUID(id) {
		h.httpHelper.SendBadRequest(c, "Invalid ID")
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.httpHelper.SendBadRequest(c, "Invalid request body")
		return
	}

	comment, err := h.articleService.AddComment(actor, id, req)
	if err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (h *ArticleHandler) DeleteComment(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id, commentID := c.Param("id"), c.Param("commentId")
	if !models.IsUUID(id) || !models.IsUUID(commentID) {
		h.httpHelper.SendBadRequest(c, "Invalid ID")
		return
	}

	if err := h.articleService.DeleteComment(actor, id, commentID); err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
