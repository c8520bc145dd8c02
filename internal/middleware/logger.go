// Package middleware provides gin middlewares shared by all handlers.
package middleware

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-wallet/pkg/configpkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// RequestIDHeader carries the request id between services.
const RequestIDHeader = "X-Request-ID"

// CreateLogger returns the application logger.
//
// In development it writes human readable lines with caller info at TRACE level.
func CreateLogger(config configpkg.Config) zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	var (
		output   io.Writer = os.Stderr
		logLevel           = zerolog.InfoLevel
	)

	log := zerolog.New(output).
		Level(logLevel).
		With().
		Timestamp().
		Logger()

	if config.Environment == "development" {
		log = log.
			Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(zerolog.TraceLevel).
			With().
			Caller().
			Logger()
	}

	return log
}

// RequestLogger logs a gin HTTP request and puts a request scoped logger into the request context.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.Request.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
			c.Request.Header.Set(RequestIDHeader, requestID)
		}

		c.Writer.Header().Set(RequestIDHeader, requestID)

		l := logger.With().Str("request_id", requestID).Logger()

		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		defer func() {
			if panicVal := recover(); panicVal != nil {
				l.Error().Msgf("panic message: %v", panicVal)
				c.AbortWithStatus(http.StatusInternalServerError)
			}

			latency := time.Since(start)
			status := c.Writer.Status()

			var logEvent *zerolog.Event
			if status >= http.StatusInternalServerError {
				logEvent = l.Error()
			} else {
				logEvent = l.Info()
			}

			logEvent.
				Str("client_ip", c.ClientIP()).
				Str("method", c.Request.Method).
				Int("status_code", status).
				Str("path", c.Request.URL.Path).
				Str("latency", latency.String()).
				Msg(c.Errors.ByType(gin.ErrorTypePrivate).String())
		}()

		c.Next()
	}
}
