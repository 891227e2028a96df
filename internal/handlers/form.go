package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edukita/edukita-backend/internal/services"
)

// formFile pulls one multipart upload out of the request. A missing field is
// not an error; the caller decides whether the file is mandatory. The
// returned closer must be called after the upload is consumed.
func formFile(c *gin.Context, field string) (*services.UploadedFile, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, fmt.Errorf("invalid file field %q: %w", field, err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to open uploaded file %q: %w", header.Filename, err)
	}
	uploaded := &services.UploadedFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}
	return uploaded, func() { file.Close() }, nil
}
