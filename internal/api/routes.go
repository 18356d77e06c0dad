package api

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/aurayouth/server/internal/auth"
	"github.com/aurayouth/server/internal/websocket"
	"github.com/aurayouth/server/usecase"
)

// demoUsers is the fixed demo credential store, as in the original service.
var demoUsers = map[string]string{
	"demo":  "demo1234",
	"alice": "wonderland",
}

var audioExtensions = map[string]bool{
	".wav": true, ".mp3": true, ".m4a": true, ".flac": true,
}

// videoExtensions also admit frame stills, which is what the analyzer
// actually consumes.
var videoExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true,
	".jpg": true, ".jpeg": true, ".png": true,
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, chat *usecase.ChatService, twin *usecase.TwinService, hub *websocket.Hub, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"service":  "aurayouth-server",
			"features": []string{"multimodal", "crisis_detection"},
		})
	})

	e.POST("/auth/login", func(c echo.Context) error {
		return login(c, logger)
	})
	e.GET("/auth/me", me, requireUser(logger))

	v1 := e.Group("/api/v1", requireUser(logger))

	v1.POST("/chat", func(c echo.Context) error {
		return handleChat(c, chat, hub)
	})
	v1.POST("/chat/multimodal", func(c echo.Context) error {
		return handleMultimodalChat(c, chat, hub)
	})

	v1.POST("/upload/audio", func(c echo.Context) error {
		return handleUpload(c, "audio", audioExtensions, logger)
	})
	v1.POST("/upload/video", func(c echo.Context) error {
		return handleUpload(c, "video", videoExtensions, logger)
	})

	v1.GET("/profile/:user_id", func(c echo.Context) error {
		return getProfile(c, twin)
	})
	v1.GET("/profile/:user_id/insights", func(c echo.Context) error {
		return getInsights(c, twin)
	})
	v1.GET("/profile/:user_id/mood", func(c echo.Context) error {
		return getMoodPrediction(c, twin)
	})

	// WebSocket endpoint with JWT validation
	e.GET("/ws/chat", func(c echo.Context) error {
		return websocketWithAuth(hub, c, logger)
	})
}

// requireUser validates the bearer token and stores the user ID in context.
func requireUser(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := claimsFromRequest(c)
			if err != nil {
				logger.Warn("Request rejected: invalid token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "invalid_token",
					Message: "Invalid or expired JWT token",
				})
			}
			c.Set("user_id", claims.UserID)
			return next(c)
		}
	}
}

func claimsFromRequest(c echo.Context) (*auth.JWTClaims, error) {
	var token string
	authHeader := c.Request().Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		token = authHeader[7:]
	}
	if token == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	return auth.ValidateToken(token)
}

func login(c echo.Context, logger *zap.Logger) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	password, ok := demoUsers[req.Username]
	if !ok || password != req.Password {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Incorrect username or password",
		})
	}

	token, err := auth.GenerateUserToken(req.Username)
	if err != nil {
		logger.Error("Failed to generate token",
			zap.String("username", req.Username),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}

	return c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   time.Now().Add(30 * time.Minute),
	})
}

func me(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"username": c.Get("user_id").(string),
	})
}

func handleChat(c echo.Context, chat *usecase.ChatService, hub *websocket.Hub) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if req.Message == "" || req.UserID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Message and user_id are required",
		})
	}

	result := chat.ProcessMessage(c.Request().Context(), usecase.ChatRequest{
		UserID:  req.UserID,
		Message: req.Message,
	})

	// Mirror the reply to a live WebSocket session, if any.
	hub.PushBotMessage(req.UserID, result)

	return c.JSON(http.StatusOK, ChatResponse{
		Response:       result.Response,
		Emotion:        result.Emotion,
		Confidence:     result.Confidence,
		CrisisDetected: result.CrisisDetected,
		CrisisType:     result.CrisisType,
	})
}

func handleMultimodalChat(c echo.Context, chat *usecase.ChatService, hub *websocket.Hub) error {
	var req MultimodalChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if req.Message == "" || req.UserID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Message and user_id are required",
		})
	}

	result := chat.ProcessMessage(c.Request().Context(), usecase.ChatRequest{
		UserID:    req.UserID,
		Message:   req.Message,
		AudioPath: req.AudioFile,
		VideoPath: req.VideoFile,
	})

	hub.PushBotMessage(req.UserID, result)

	return c.JSON(http.StatusOK, ChatResponse{
		Response:       result.Response,
		Emotion:        result.Emotion,
		Confidence:     result.Confidence,
		CrisisDetected: result.CrisisDetected,
		CrisisType:     result.CrisisType,
	})
}

func handleUpload(c echo.Context, kind string, allowed map[string]bool, logger *zap.Logger) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_file",
			Message: "A file upload is required",
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowed[ext] {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "unsupported_format",
			Message: "Unsupported " + kind + " format",
		})
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	targetDir := filepath.Join(uploadDir, kind)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		logger.Error("Failed to create upload directory", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "upload_failed",
			Message: "Could not store the uploaded file",
		})
	}

	userID := c.Get("user_id").(string)
	targetPath := filepath.Join(targetDir, userID+"_"+filepath.Base(file.Filename))

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "upload_failed",
			Message: "Could not read the uploaded file",
		})
	}
	defer src.Close()

	dst, err := os.Create(targetPath)
	if err != nil {
		logger.Error("Failed to create upload target",
			zap.String("path", targetPath),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "upload_failed",
			Message: "Could not store the uploaded file",
		})
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "upload_failed",
			Message: "Could not store the uploaded file",
		})
	}

	logger.Info("Media file uploaded",
		zap.String("user_id", userID),
		zap.String("kind", kind),
		zap.String("path", targetPath))

	return c.JSON(http.StatusOK, UploadResponse{
		FilePath: targetPath,
		Message:  kind + " file uploaded successfully",
	})
}

func getProfile(c echo.Context, twin *usecase.TwinService) error {
	userID := c.Param("user_id")
	profile, err := twin.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load profile",
		})
	}
	if profile == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "No profile for user " + userID,
		})
	}
	return c.JSON(http.StatusOK, profile)
}

func getInsights(c echo.Context, twin *usecase.TwinService) error {
	userID := c.Param("user_id")
	insights, err := twin.GetInsights(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to build insights",
		})
	}
	if insights == nil {
		return c.JSON(http.StatusOK, map[string]string{"insights": "No data available"})
	}
	return c.JSON(http.StatusOK, insights)
}

func getMoodPrediction(c echo.Context, twin *usecase.TwinService) error {
	userID := c.Param("user_id")
	prediction, err := twin.PredictMood(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to predict mood",
		})
	}
	return c.JSON(http.StatusOK, prediction)
}

// websocketWithAuth handles WebSocket connections with JWT authentication
func websocketWithAuth(hub *websocket.Hub, c echo.Context, logger *zap.Logger) error {
	claims, err := claimsFromRequest(c)
	if err != nil {
		// Browsers cannot set headers on WebSocket upgrades, so also accept
		// the token as a query parameter.
		if token := c.QueryParam("token"); token != "" {
			claims, err = auth.ValidateToken(token)
		}
	}
	if err != nil || claims == nil {
		logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "A valid JWT token is required",
		})
	}

	if claims.Role != "user" {
		logger.Warn("WebSocket connection rejected: invalid role",
			zap.String("role", claims.Role))
		return c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "invalid_role",
			Message: "Only user tokens are allowed for WebSocket connections",
		})
	}

	logger.Info("WebSocket connection authenticated",
		zap.String("user_id", claims.UserID))

	return websocket.HandleWebSocketWithAuth(hub, c, claims.UserID, logger)
}
