package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Brownie44l1/fer-api/internal/model"
)

const Version = "1.0.0"

type Handler struct {
	modelServer *model.Server
	maxUpload   int64
}

// NewHandler serves modelServer. Uploads larger than maxUpload bytes are
// rejected; zero keeps the 10MB default.
func NewHandler(modelServer *model.Server, maxUpload int64) *Handler {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &Handler{
		modelServer: modelServer,
		maxUpload:   maxUpload,
	}
}

func failure(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func (h *Handler) Root(c *gin.Context) {
	resp := gin.H{"message": "Emotion Detection API", "version": Version}
	if !h.modelServer.RealWeights() {
		resp["status"] = "deployed"
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, h.modelServer.Models())
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.modelServer.Health())
}

// Predict handles a multipart upload with an image under "file" and the
// registry name under "model".
func (h *Handler) Predict(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			failure(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		failure(c, http.StatusUnprocessableEntity, "No image file provided. Use 'file' as the form field name")
		return
	}

	name := c.PostForm("model")
	if name == "" {
		failure(c, http.StatusUnprocessableEntity, "No model provided. Use 'model' as the form field name")
		return
	}

	slog.Debug("received file", "filename", header.Filename, "size", header.Size, "model", name)

	file, err := header.Open()
	if err != nil {
		h.predictionError(c, name, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.predictionError(c, name, err)
		return
	}

	result, err := h.modelServer.Predict(name, data)
	if err != nil {
		h.predictionError(c, name, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type tensorRequest struct {
	Model string    `json:"model" binding:"required"`
	Image []float32 `json:"image" binding:"required"`
}

// PredictTensor classifies a preprocessed 3x224x224 tensor sent as JSON.
func (h *Handler) PredictTensor(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	var req tensorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.modelServer.PredictTensor(req.Model, req.Image)
	if err != nil {
		h.predictionError(c, req.Model, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// predictionError maps inference failures to responses. Only an unknown
// model or a malformed tensor is a client error; decode failures stay 500.
func (h *Handler) predictionError(c *gin.Context, name string, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidModel):
		failure(c, http.StatusBadRequest, fmt.Sprintf("Invalid model: %s", name))
	case errors.Is(err, model.ErrInvalidInput):
		failure(c, http.StatusBadRequest, err.Error())
	default:
		slog.Error("prediction error", "model", name, "error", err, "request_id", c.GetString(requestIDKey))
		failure(c, http.StatusInternalServerError, err.Error())
	}
}
