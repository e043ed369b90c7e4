package response

import (
	"encoding/json"
	"net/http"
	"time"

	"tutorhub/internal/middleware"
	"tutorhub/internal/services"

	"go.uber.org/zap"
)

// ===============================
// RESPONSE TYPES
// ===============================

// APIResponse is the standard JSON envelope
type APIResponse struct {
	Success   bool         `json:"success"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

// ErrorDetail carries error information in API responses
type ErrorDetail struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ===============================
// RESPONSE BUILDER
// ===============================

// Builder writes standardized API responses
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a response builder
func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{logger: logger}
}

// WriteSuccess writes a success envelope
func (b *Builder) WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	b.write(w, r, status, &APIResponse{
		Success: true,
		Data:    data,
	})
}

// WriteError writes an error envelope, mapping service errors to
// their HTTP status.
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := services.GetServiceError(err)

	status := serviceErr.GetStatusCode()
	if status >= http.StatusInternalServerError {
		b.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Error(err))
	}

	b.write(w, r, status, &APIResponse{
		Success: false,
		Error: &ErrorDetail{
			Type:    serviceErr.Type,
			Message: serviceErr.Message,
			Code:    serviceErr.Code,
			Details: serviceErr.Details,
		},
	})
}

func (b *Builder) write(w http.ResponseWriter, r *http.Request, status int, resp *APIResponse) {
	resp.RequestID = middleware.GetRequestID(r.Context())
	resp.Timestamp = time.Now().Unix()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		b.logger.Error("failed to encode response", zap.Error(err))
	}
}
