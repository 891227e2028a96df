package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edukita/edukita-backend/internal/services"
)

type EducationHandler struct {
	educationService services.EducationService
}

func NewEducationHandler(educationService services.EducationService) *EducationHandler {
	return &EducationHandler{educationService: educationService}
}

func (eh *EducationHandler) Create(c *gin.Context) {
	image, closeImage, err := formFile(c, "image")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	defer closeImage()

	education, err := eh.educationService.Create(c.Request.Context(), c.PostForm("title"), c.PostForm("video_url"), image)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"education": education})
}

func (eh *EducationHandler) GetByID(c *gin.Context) {
	educationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid education id"))
		return
	}
	education, err := eh.educationService.GetByID(c.Request.Context(), educationID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"education": education})
}

func (eh *EducationHandler) GetLatest(c *gin.Context) {
	educations, err := eh.educationService.GetLatest(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"educations": educations})
}

func (eh *EducationHandler) GetOwn(c *gin.Context) {
	educations, err := eh.educationService.GetOwn(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"educations": educations})
}

func (eh *EducationHandler) Search(c *gin.Context) {
	educations, err := eh.educationService.Search(c.Request.Context(), c.Query("title"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"educations": educations})
}

func (eh *EducationHandler) Update(c *gin.Context) {
	educationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid education id"))
		return
	}
	image, closeImage, err := formFile(c, "image")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	defer closeImage()

	education, err := eh.educationService.Update(c.Request.Context(), educationID, c.PostForm("title"), c.PostForm("video_url"), image)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"education": education})
}

func (eh *EducationHandler) Delete(c *gin.Context) {
	educationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid education id"))
		return
	}
	if err := eh.educationService.Delete(c.Request.Context(), educationID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "education deleted"})
}
