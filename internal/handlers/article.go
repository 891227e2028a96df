package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edukita/edukita-backend/internal/services"
)

type ArticleHandler struct {
	articleService services.ArticleService
}

func NewArticleHandler(articleService services.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

func (ah *ArticleHandler) Create(c *gin.Context) {
	image, closeImage, err := formFile(c, "image")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	defer closeImage()
	content, closeContent, err := formFile(c, "content")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	defer closeContent()

	article, err := ah.articleService.Create(c.Request.Context(), c.PostForm("title"), image, content)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"article": article})
}

func (ah *ArticleHandler) GetByID(c *gin.Context) {
	articleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid article id"))
		return
	}
	article, err := ah.articleService.GetByID(c.Request.Context(), articleID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"article": article})
}

func (ah *ArticleHandler) GetLatest(c *gin.Context) {
	articles, err := ah.articleService.GetLatest(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"articles": articles})
}

func (ah *ArticleHandler) GetOwn(c *gin.Context) {
	articles, err := ah.articleService.GetOwn(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"articles": articles})
}

func (ah *ArticleHandler) Search(c *gin.Context) {
	articles, err := ah.articleService.Search(c.Request.Context(), c.Query("title"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"articles": articles})
}

func (ah *ArticleHandler) Update(c *gin.Context) {
	articleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid article id"))
		return
	}
	image, closeImage, err := formFile(c, "image")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	defer closeImage()
	content, closeContent, err := formFile(c, "content")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	defer closeContent()

	article, err := ah.articleService.Update(c.Request.Context(), articleID, c.PostForm("title"), image, content)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"article": article})
}

func (ah *ArticleHandler) Delete(c *gin.Context) {
	articleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid article id"))
		return
	}
	if err := ah.articleService.Delete(c.Request.Context(), articleID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "article deleted"})
}
