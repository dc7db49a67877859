package api

import (
	"fmt"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipehub/backend/internal/apperror"
	"github.com/pageza/recipehub/backend/internal/blob"
)

// formUpload opens the multipart "file" field. The caller must call the
// returned close function once the upload has been consumed.
func formUpload(c *gin.Context) (blob.Upload, func(), error) {
	header, err := c.FormFile("file")
	if err != nil {
		return blob.Upload{}, nil, apperror.BadRequest("No file uploaded")
	}
	file, err := header.Open()
	if err != nil {
		return blob.Upload{}, nil, apperror.Internal(fmt.Errorf("opening upload: %w", err))
	}
	return blob.Upload{
		Filename:    header.Filename,
		ContentType: contentType(header),
		Size:        header.Size,
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

func contentType(header *multipart.FileHeader) string {
	return header.Header.Get("Content-Type")
}
