package controllers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"seva-be/models"
	"seva-be/services"
	"seva-be/store"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const maxPhotoSize = 5 * 1024 * 1024 // 5MB limit

// IssueController exposes the issue lifecycle over HTTP.
type IssueController struct {
	svc *services.IssueService
}

func NewIssueController(svc *services.IssueService) *IssueController {
	return &IssueController{svc: svc}
}

// respondError translates the error taxonomy to an HTTP status and a
// JSON body. Nothing here crashes the process.
func respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, models.ErrIssueNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// bindingErrorMessage flattens gin binding failures into the same
// "field is required" wording the service layer uses.
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required":
				parts = append(parts, strings.ToLower(fe.Field())+" is required")
			default:
				parts = append(parts, strings.ToLower(fe.Field())+" is invalid")
			}
		}
		return strings.Join(parts, ", ")
	}
	return err.Error()
}

// GetAllIssues returns issues filtered by status, category, and village,
// newest first.
func (ic *IssueController) GetAllIssues(c *gin.Context) {
	filter := store.Filter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Village:  c.Query("village"),
	}

	issues, err := ic.svc.ListIssues(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if issues == nil {
		issues = []models.Issue{}
	}

	c.JSON(http.StatusOK, issues)
}

// GetIssue returns a single issue by its public id.
func (ic *IssueController) GetIssue(c *gin.Context) {
	issue, err := ic.svc.GetIssue(c.Request.Context(), c.Param("issueId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

func createdResponse(c *gin.Context, issue *models.Issue) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"issueId": issue.IssueID,
		"message": "Issue reported successfully",
	})
}

// CreateIssue handles the multipart intake form, including the optional
// photo upload. The photo is stored inline as a base64 data URL.
func (ic *IssueController) CreateIssue(c *gin.Context) {
	input := services.CreateIssueInput{
		Name:        c.PostForm("name"),
		Village:     c.PostForm("village"),
		Category:    c.PostForm("category"),
		Description: c.PostForm("description"),
		Priority:    c.PostForm("priority"),
	}

	// The location form field carries a JSON document
	if locRaw := c.PostForm("location"); locRaw != "" {
		var loc models.Location
		if err := json.Unmarshal([]byte(locRaw), &loc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "location must be valid JSON"})
			return
		}
		input.Location = &loc
	}

	file, err := c.FormFile("photo")
	if err != nil && err != http.ErrMissingFile {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo upload"})
		return
	}
	if file != nil {
		photoURL, err := encodePhoto(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		input.PhotoURL = &photoURL
	}

	issue, err := ic.svc.CreateIssue(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	createdResponse(c, issue)
}

func encodePhoto(file *multipart.FileHeader) (string, error) {
	if file.Size > maxPhotoSize {
		return "", fmt.Errorf("photo exceeds the %dMB limit", maxPhotoSize/(1024*1024))
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", errors.New("only image files are allowed")
	}

	src, err := file.Open()
	if err != nil {
		return "", errors.New("failed to read photo")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxPhotoSize+1))
	if err != nil {
		return "", errors.New("failed to read photo")
	}
	if int64(len(data)) > maxPhotoSize {
		return "", fmt.Errorf("photo exceeds the %dMB limit", maxPhotoSize/(1024*1024))
	}

	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}

// CreateIssueJSON is the JSON intake path; no photo upload.
func (ic *IssueController) CreateIssueJSON(c *gin.Context) {
	var input struct {
		Name        string           `json:"name" binding:"required"`
		Village     string           `json:"village" binding:"required"`
		Category    string           `json:"category" binding:"required"`
		Description string           `json:"description" binding:"required"`
		Location    *models.Location `json:"location,omitempty"`
		Priority    string           `json:"priority,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	issue, err := ic.svc.CreateIssue(c.Request.Context(), services.CreateIssueInput{
		Name:        input.Name,
		Village:     input.Village,
		Category:    input.Category,
		Description: input.Description,
		Location:    input.Location,
		Priority:    input.Priority,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	createdResponse(c, issue)
}

// UpdateIssueStatus moves an issue to a new status and returns the
// updated record.
func (ic *IssueController) UpdateIssueStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	issue, err := ic.svc.UpdateStatus(c.Request.Context(), c.Param("issueId"), models.IssueStatus(input.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// GetStats returns the aggregate dashboard counts, computed fresh on
// every call.
func (ic *IssueController) GetStats(c *gin.Context) {
	stats, err := ic.svc.ComputeStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":      stats.Total,
		"pending":    stats.Pending,
		"inProgress": stats.InProgress,
		"resolved":   stats.Resolved,
		"categories": stats.Categories,
	})
}
