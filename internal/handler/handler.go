package handler

import (
	"recipehub/internal/apperr"
	"recipehub/internal/dto"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto the HTTP status from the taxonomy.
func respondError(c *gin.Context, err error) {
	c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
}

// formUpload extracts an optional file field from a multipart request.
// Returns nil when the field is absent.
func formUpload(c *gin.Context, field string) (*dto.Upload, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	// The multipart reader is closed with the request body.
	return &dto.Upload{Filename: fileHeader.Filename, Reader: f}, nil
}
