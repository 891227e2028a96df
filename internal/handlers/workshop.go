package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edukita/edukita-backend/internal/services"
)

type WorkshopHandler struct {
	workshopService services.WorkshopService
}

func NewWorkshopHandler(workshopService services.WorkshopService) *WorkshopHandler {
	return &WorkshopHandler{workshopService: workshopService}
}

const workshopDateLayout = "2006-01-02"

// workshopInputFromForm reads the multipart fields shared by create and
// update. Absent slice fields stay nil so updates can tell "not sent" from
// "cleared".
func workshopInputFromForm(c *gin.Context) (services.WorkshopInput, error) {
	input := services.WorkshopInput{
		Title:     c.PostForm("title"),
		Objective: c.PostForm("objective"),
		StartTime: c.PostForm("start_time"),
		EndTime:   c.PostForm("end_time"),
		TimeZone:  c.PostForm("time_zone"),
		Location:  c.PostForm("location"),
		Price:     c.PostForm("price"),
	}
	if values, ok := c.GetPostFormArray("facilities"); ok {
		input.Facilities = values
	}
	if values, ok := c.GetPostFormArray("topics"); ok {
		input.Topics = values
	}
	if values, ok := c.GetPostFormArray("moderators"); ok {
		input.Moderators = values
	}
	if values, ok := c.GetPostFormArray("speakers"); ok {
		input.Speakers = values
	}
	if raw := c.PostForm("date"); raw != "" {
		date, err := time.Parse(workshopDateLayout, raw)
		if err != nil {
			return input, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
		}
		input.Date = date
	}
	return input, nil
}

func (wh *WorkshopHandler) Create(c *gin.Context) {
	input, err := workshopInputFromForm(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	poster, closePoster, err := formFile(c, "poster")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	defer closePoster()

	workshop, err := wh.workshopService.Create(c.Request.Context(), input, poster)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"workshop": workshop})
}

func (wh *WorkshopHandler) GetByID(c *gin.Context) {
	workshopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid workshop id"))
		return
	}
	workshop, err := wh.workshopService.GetByID(c.Request.Context(), workshopID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"workshop": workshop})
}

func (wh *WorkshopHandler) GetAll(c *gin.Context) {
	grouped, err := wh.workshopService.GetAll(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"workshops": grouped})
}

func (wh *WorkshopHandler) GetOwn(c *gin.Context) {
	workshops, err := wh.workshopService.GetOwn(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"workshops": workshops})
}

func (wh *WorkshopHandler) Search(c *gin.Context) {
	workshops, err := wh.workshopService.Search(c.Request.Context(), c.Query("title"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"workshops": workshops})
}

func (wh *WorkshopHandler) Update(c *gin.Context) {
	workshopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid workshop id"))
		return
	}
	input, err := workshopInputFromForm(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	poster, closePoster, err := formFile(c, "poster")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	defer closePoster()

	workshop, err := wh.workshopService.Update(c.Request.Context(), workshopID, input, poster)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"workshop": workshop})
}

func (wh *WorkshopHandler) Delete(c *gin.Context) {
	workshopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid workshop id"))
		return
	}
	if err := wh.workshopService.Delete(c.Request.Context(), workshopID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "workshop deleted"})
}

func (wh *WorkshopHandler) Join(c *gin.Context) {
	workshopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid workshop id"))
		return
	}
	workshop, err := wh.workshopService.Join(c.Request.Context(), workshopID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"workshop": workshop})
}

func (wh *WorkshopHandler) Participants(c *gin.Context) {
	workshopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid workshop id"))
		return
	}
	participants, err := wh.workshopService.Participants(c.Request.Context(), workshopID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"participants": participants})
}
