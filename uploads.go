package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/config"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/models"
	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/utils"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadSizeBytes int64 = 10 * 1024 * 1024

var spreadsheetExtensions = map[string]bool{
	".xlsx": true,
	".csv":  true,
}

var paperExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// uploadImportFileHandler receives the registry spreadsheet and stages it in
// the bucket. The returned object key is what an import job is created
// against.
func uploadImportFileHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 10MB limit"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !spreadsheetExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .xlsx and .csv files are accepted"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer file.Close()

	objectKey := path.Join("imports", uuid.New().String()+ext)
	if err := utils.UploadFileToGCS(c.Request.Context(), objectKey, file); err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "uploads.go", "uploadImportFileHandler", "upload to storage", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"object_key": objectKey,
		"file_name":  fileHeader.Filename,
	})
}

// uploadResolutionPaperHandler attaches a payment or compliance document to
// a case. Images get a thumbnail rendered alongside the original.
func uploadResolutionPaperHandler(c *gin.Context) {
	caseId, ok := pathId(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 10MB limit"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !paperExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only pdf, jpg and png files are accepted"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSizeBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}

	objectKey := path.Join("resolution-papers", uuid.New().String()+ext)
	if err := utils.UploadFileToGCS(c.Request.Context(), objectKey, bytes.NewReader(data)); err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "uploads.go", "uploadResolutionPaperHandler", "upload to storage", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	thumbnailURL := ""
	if imageExtensions[ext] {
		thumbnailKey, err := generateThumbnail(c.Request.Context(), objectKey, data)
		if err != nil {
			logger := config.GetLogger()
			config.LogError(logger, "uploads.go", "uploadResolutionPaperHandler", "generate thumbnail", objectKey, err)
		} else {
			thumbnailURL = utils.BuildObjectAccessURL(thumbnailKey)
		}
	}

	paper, err := models.AddResolutionPaper(c.Request.Context(), caseId, utils.BuildObjectAccessURL(objectKey), thumbnailURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, paper)
}

func generateThumbnail(ctx context.Context, objectKey string, data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		return "", err
	}

	thumbnailKey := thumbnailObjectKey(objectKey)
	if err := utils.UploadBytesToGCS(ctx, thumbnailKey, buf.Bytes(), "image/jpeg"); err != nil {
		return "", err
	}
	return thumbnailKey, nil
}

func thumbnailObjectKey(objectKey string) string {
	dir := path.Dir(objectKey)
	filename := path.Base(objectKey)
	return path.Join(dir, "thumbnails", filename)
}
