// Package api provides the REST API server for bank2sf2
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/james-see/bank2sf2/pkg/converter"
	"github.com/james-see/bank2sf2/pkg/sf2"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title bank2sf2 API
// @version 1.0
// @description API for inspecting soundbanks and converting DLS collections to SoundFont 2
// @host localhost:8080
// @BasePath /api/v1

// maxUpload bounds the size of an uploaded bank
const maxUpload = 256 << 20

// Server serves conversion requests with fixed converter options
type Server struct {
	opts converter.Options
}

// NewServer creates a server converting with opts
func NewServer(opts converter.Options) *Server {
	return &Server{opts: opts}
}

// StartServer starts the API server on the specified port
func StartServer(port int, opts converter.Options) error {
	return NewServer(opts).Router().Run(fmt.Sprintf(":%d", port))
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/formats", listFormats)
		v1.POST("/convert/dls2sf2", s.handleDLSToSF2)
		v1.POST("/inspect", s.handleInspect)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "bank2sf2",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns the soundbank formats that can be inspected and the conversion paths
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"dls", "sf2", "sbk", "sf3", "ecw"},
		"conversions": converter.GetSupportedConversions(),
	})
}

// handleDLSToSF2 godoc
// @Summary Convert DLS to SoundFont 2
// @Description Upload a DLS collection and receive an SF2 bank
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "DLS file to convert"
// @Param verify query bool false "Load the result with an independent SoundFont parser before returning it"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/dls2sf2 [post]
func (s *Server) handleDLSToSF2(c *gin.Context) {
	data, filename, ok := readUpload(c)
	if !ok {
		return
	}

	conv := converter.New(s.opts)
	result, err := conv.ConvertDLS(data)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if c.Query("verify") == "true" {
		if _, err := sf2.Verify(result); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	outputName := strings.TrimSuffix(filename, filepath.Ext(filename))
	if outputName == "" {
		outputName = "converted"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.sf2", outputName))
	c.Header("X-Dropped-Blocks", fmt.Sprintf("%d", conv.Dropped()))
	c.Data(http.StatusOK, "application/octet-stream", result)
}

// handleInspect godoc
// @Summary Inspect a soundbank
// @Description Upload a DLS or SoundFont bank and receive a summary with structural warnings
// @Tags info
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Soundbank to inspect"
// @Success 200 {object} converter.Summary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/inspect [post]
func (s *Server) handleInspect(c *gin.Context) {
	data, filename, ok := readUpload(c)
	if !ok {
		return
	}

	summary, err := converter.New(s.opts).Inspect(data, converter.DetectFormat(filename))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func readUpload(c *gin.Context) ([]byte, string, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return nil, "", false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUpload))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return nil, "", false
	}
	return data, header.Filename, true
}

func statusFor(err error) int {
	var be *converter.BankError
	if errors.As(err, &be) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
