// Package server exposes the answer pipeline over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/interview-coach/failure"
	"github.com/maastricht-university/interview-coach/logging"
	"github.com/maastricht-university/interview-coach/orchestrator"
)

// Runner is the part of the pipeline the handlers need.
type Runner interface {
	Run(ctx context.Context, sub orchestrator.Submission) (*orchestrator.Result, error)
}

type Options struct {
	MaxUpload string // e.g. "25M"; empty disables the limit
}

type Server struct {
	e   *echo.Echo
	p   Runner
	log logrus.FieldLogger
}

func New(p Runner, opts Options, log logrus.FieldLogger) *Server {
	s := &Server{e: echo.New(), p: p, log: logging.Component(log, "http")}
	s.e.HideBanner = true
	s.e.HidePort = true

	s.e.Use(middleware.Recover())
	s.e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	s.e.Use(s.accessLog)
	if opts.MaxUpload != "" {
		s.e.Use(middleware.BodyLimit(opts.MaxUpload))
	}

	s.e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	s.e.POST("/api/evaluate", s.evaluate)
	s.e.POST("/process-answer", s.evaluate)
	return s
}

func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("listening")
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

func (s *Server) evaluate(c echo.Context) error {
	reqID := c.Response().Header().Get(echo.HeaderXRequestID)
	log := s.log.WithField("request_id", reqID)

	sub := orchestrator.Submission{
		RequestID:  reqID,
		Question:   c.FormValue("questionText"),
		Domain:     c.FormValue("domain"),
		Experience: c.FormValue("experience"),
		Posture:    telemetryField(log, "postureData", c.FormValue("postureData")),
		Facial:     telemetryField(log, "emotionData", c.FormValue("emotionData")),
	}

	fh, err := c.FormFile("audio")
	if err == nil {
		f, oerr := fh.Open()
		if oerr != nil {
			return s.fail(c, failure.Wrap(failure.Input, oerr))
		}
		defer f.Close()
		sub.Audio = f
		sub.AudioHint = fh.Filename
		if ct := fh.Header.Get(echo.HeaderContentType); ct != "" && ct != echo.MIMEOctetStream {
			sub.AudioHint = ct
		}
	}

	res, err := s.p.Run(c.Request().Context(), sub)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, res.Body())
}

func (s *Server) fail(c echo.Context, err error) error {
	kind, ok := failure.KindOf(err)
	if !ok {
		kind = "processing"
	}
	status := http.StatusInternalServerError
	if kind == failure.Input {
		status = http.StatusBadRequest
	}
	return c.String(status, string(kind)+" failed: "+message(err))
}

func message(err error) string {
	var fe *failure.Error
	if errors.As(err, &fe) && fe.Err != nil {
		return fe.Err.Error()
	}
	return err.Error()
}

// telemetryField decodes an optional JSON form field. Anything that is not
// valid JSON is dropped.
func telemetryField(log logrus.FieldLogger, name, v string) json.RawMessage {
	b := bytes.TrimSpace([]byte(v))
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte("undefined")) {
		return nil
	}
	if !json.Valid(b) {
		log.WithField("field", name).Warn("ignoring telemetry that is not valid JSON")
		return nil
	}
	return json.RawMessage(b)
}

func (s *Server) accessLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.log.WithFields(logrus.Fields{
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			"method":     c.Request().Method,
			"path":       c.Path(),
			"status":     c.Response().Status,
			"elapsed":    time.Since(start),
		}).Info("request")
		return nil
	}
}
