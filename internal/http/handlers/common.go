package handlers

import (
	"net/http"
	"sync"

	"busline/internal/cache"
	intconfig "busline/internal/config"
	"busline/internal/domain"
	"busline/internal/http/middleware"
	"busline/internal/notify"

	"github.com/gin-gonic/gin"
)

var (
	wiringMu sync.RWMutex
	env      intconfig.Env
	appCache *cache.Cache
	notifier notify.Notifier
)

// Configure stores process-wide collaborators for the handler package.
// Called once at startup, before the router starts serving.
func Configure(e intconfig.Env, c *cache.Cache, n notify.Notifier) {
	wiringMu.Lock()
	defer wiringMu.Unlock()
	env = e
	appCache = c
	notifier = n
}

func appEnv() intconfig.Env {
	wiringMu.RLock()
	defer wiringMu.RUnlock()
	return env
}

func searchCache() *cache.Cache {
	wiringMu.RLock()
	defer wiringMu.RUnlock()
	return appCache
}

func eventNotifier() notify.Notifier {
	wiringMu.RLock()
	defer wiringMu.RUnlock()
	if notifier == nil {
		return notify.LogNotifier{}
	}
	return notifier
}

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	payload := gin.H{
		"message":    message,
		"request_id": middleware.GetRequestID(c),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// respondDomainError maps the error taxonomy to HTTP outcomes.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		RespondError(c, http.StatusBadRequest, "invalid request", err)
	case domain.IsNotFound(err):
		RespondError(c, http.StatusNotFound, "not found", err)
	case domain.IsForbidden(err):
		RespondError(c, http.StatusForbidden, "forbidden", err)
	case domain.IsInsufficientSeats(err):
		RespondError(c, http.StatusConflict, "not enough seats", err)
	case domain.IsBusy(err):
		c.Header("Retry-After", "1")
		RespondError(c, http.StatusServiceUnavailable, "trip is busy, please retry", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal error", err)
	}
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		RespondError(c, http.StatusBadRequest, "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}
