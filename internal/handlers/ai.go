// internal/handlers/ai.go
package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/craftai/craftai-backend/internal/services"
	"github.com/craftai/craftai-backend/internal/utils"
)

// maxAnalysisImageSize matches the storage ceiling; analysis never
// accepts what storage would reject.
const maxAnalysisImageSize = 10 * 1024 * 1024

type AIHandler struct {
	aiService *services.AIService
}

func NewAIHandler(aiService *services.AIService) *AIHandler {
	return &AIHandler{
		aiService: aiService,
	}
}

// POST /ai/generate-story
func (h *AIHandler) GenerateStory(c *gin.Context) {
	var req struct {
		StoryIdea string `json:"story_idea" validate:"required"`
		StoryTone string `json:"story_tone"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	story, err := h.aiService.GenerateStory(c.Request.Context(), req.StoryIdea, req.StoryTone)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"story": story,
	})
}

// POST /ai/detect-materials
func (h *AIHandler) DetectMaterials(c *gin.Context) {
	imageData, mimeType, ok := h.readImage(c)
	if !ok {
		return
	}

	analysis, usingAI := h.aiService.AnalyzeMaterials(c.Request.Context(), imageData, mimeType)
	suggestion := h.aiService.SuggestPrice(analysis)

	utils.SuccessResponse(c, gin.H{
		"analysis":         analysis,
		"price_suggestion": suggestion,
		"using_ai":         usingAI,
		"analyzed_at":      time.Now().UTC(),
	})
}

// POST /ai/analyze-image
func (h *AIHandler) AnalyzeImage(c *gin.Context) {
	imageData, mimeType, ok := h.readImage(c)
	if !ok {
		return
	}

	title := c.PostForm("product_title")
	category := c.PostForm("category")
	existing := c.PostForm("existing_description")

	analysis, usingAI := h.aiService.AnalyzeMaterials(c.Request.Context(), imageData, mimeType)
	enhanced := h.aiService.EnhanceDescription(title, category, existing, analysis)

	utils.SuccessResponse(c, gin.H{
		"analysis":             analysis,
		"enhanced_description": enhanced,
		"original_description": existing,
		"using_ai":             usingAI,
	})
}

func (h *AIHandler) readImage(c *gin.Context) ([]byte, string, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "No image file provided", nil)
		return nil, "", false
	}

	if fileHeader.Size > maxAnalysisImageSize {
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "QUOTA_EXCEEDED", "Image exceeds the 10MB limit", nil)
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Unable to read uploaded file", nil)
		return nil, "", false
	}
	defer file.Close()

	imageData, err := io.ReadAll(io.LimitReader(file, maxAnalysisImageSize))
	if err != nil {
		utils.BadRequestResponse(c, "Unable to read uploaded file", nil)
		return nil, "", false
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return imageData, mimeType, true
}
