package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"spaceship-manager/internal/model"
)

// Timeout caps request handling at the configured duration. Timed-out
// requests get a 503 whose body follows the API error envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	body, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "REQUEST_TIMEOUT",
			Message: "request timed out",
		},
	})

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
