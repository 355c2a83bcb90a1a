package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/koblas/ftpserve/pkg/challenge"
	"github.com/koblas/ftpserve/pkg/swhttp"
)

// ChallengeBoard is a challenge registry that can also report on itself.
type ChallengeBoard interface {
	challenge.Registry
	Snapshot() []challenge.Status
}

type HandlerState struct {
	Configuration
	logger     Logger
	challenges ChallengeBoard
	files      *PublicFiles
}

func NewHandler(config Configuration, challenges ChallengeBoard) (HandlerState, error) {
	logger := NewLogger(config.Debug)

	files, err := NewPublicFiles(config.Public, challenges, WithLogger(logger))
	if err != nil {
		return HandlerState{}, err
	}
	config.Public = files.BaseDir()

	return HandlerState{
		Configuration: config,
		logger:        logger,
		challenges:    challenges,
		files:         files,
	}, nil
}

func acceptJSON(r *http.Request) bool {
	accept := r.Header[http.CanonicalHeaderKey("accept")]

	for _, value := range accept {
		if strings.Contains(strings.ToLower(value), "application/json") {
			return true
		}
	}

	return false
}

// sendError is the error continuation for every route. A <status>.html page
// in the public directory replaces the built in one.
func (state HandlerState) sendError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := statusOf(err)
	state.logger.Debug("request failed", "path", r.URL.Path, "status", statusCode, "error", err)

	errorPage := filepath.Join(state.Public, fmt.Sprintf("%d.html", statusCode))
	if stats, statErr := os.Lstat(errorPage); statErr == nil && stats.Mode().IsRegular() {
		if data, readErr := os.ReadFile(errorPage); readErr == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(statusCode)
			w.Write(data)
			return
		}
	}

	errorBody := swhttp.ErrorPage{StatusCode: statusCode}
	switch statusCode {
	case http.StatusBadRequest:
		errorBody.Code = "bad_request"
		errorBody.Message = "Bad request"
	case http.StatusForbidden:
		errorBody.Code = "forbidden"
		errorBody.Message = err.Error()
	case http.StatusNotFound:
		errorBody.Code = "not_found"
		errorBody.Message = "The requested path could not be found"
	default:
		errorBody.Code = "internal_server_error"
		errorBody.Message = "A server error has occurred"
	}

	if acceptJSON(r) {
		type errorInfo = struct {
			Error swhttp.ErrorPage `json:"error"`
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(statusCode)

		if err := json.NewEncoder(w).Encode(errorInfo{errorBody}); err != nil {
			state.logger.Info("write error response", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := swhttp.RenderError(w, errorBody); err != nil {
		state.logger.Info("write error response", "error", err)
	}
}

func (state HandlerState) serveChallenges(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(state.challenges.Snapshot()); err != nil {
		state.logger.Info("write challenges", "error", err)
	}
}

func (state HandlerState) AttachRoutes(router chi.Router) {
	router.Route("/ftp", func(r chi.Router) {
		r.Get("/", state.serveListing)
		r.Get("/{file}", state.files.Handler(state.sendError))
	})
	router.Get("/api/challenges", state.serveChallenges)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		state.sendError(w, r, &HTTPError{StatusCode: http.StatusNotFound, Err: fmt.Errorf("no route for %s", r.URL.Path)})
	})
}
