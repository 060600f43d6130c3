package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"telyourstory/internal/browse"
	"telyourstory/internal/story/model"
	"telyourstory/internal/story/service"
	"telyourstory/middleware"
	"telyourstory/pkg/logger"
)

// Cover uploads larger than this are rejected at parse time.
const maxCoverBytes = 8 << 20

type StoryHandler struct {
	Service *service.StoryService
	Browse  *browse.Engine
}

func NewStoryHandler(svc *service.StoryService, engine *browse.Engine) *StoryHandler {
	return &StoryHandler{Service: svc, Browse: engine}
}

// PublishStory handles both creation and update. The request is multipart so
// a newly chosen cover travels with the draft fields:
//
//	title, content, category  — draft text fields
//	story_id                  — present when editing an existing story
//	image                     — file part, a new cover not yet uploaded
//	image_url                 — retained cover from a previous save
func (h *StoryHandler) PublishStory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxCoverBytes); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	sess := sessionFrom(r)
	draft := model.Draft{
		TargetID:         r.FormValue("story_id"),
		Title:            r.FormValue("title"),
		Content:          r.FormValue("content"),
		Category:         model.ParseCategory(r.FormValue("category")),
		ExistingImageURL: r.FormValue("image_url"),
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "Failed to read cover image", http.StatusBadRequest)
			return
		}
		draft.LocalImage = &model.LocalImage{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	result, err := h.Service.Publish(r.Context(), sess, draft)
	if err != nil {
		logger.Sugar.Infof("Publish rejected for user %q: %v", sess.UserID, err)
		http.Error(w, err.Error(), publishStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// GetStories serves the browse view: the cached ordered list projected
// through the category/query filter. `refresh=1` forces a reload.
func (h *StoryHandler) GetStories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Query().Get("refresh") == "1" {
		if err := h.Browse.Load(); err != nil {
			http.Error(w, "Failed to load stories", http.StatusBadGateway)
			return
		}
	}

	list, err := h.Browse.Ensure()
	if err != nil {
		http.Error(w, "Failed to load stories", http.StatusBadGateway)
		return
	}

	category := r.URL.Query().Get("category")
	query := r.URL.Query().Get("q")
	filtered := browse.Filter(list, category, query)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(filtered)
}

func (h *StoryHandler) GetStory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	story, err := h.Service.Repo.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "Story not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Sugar.Errorf("Error fetching story %s: %v", id, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(story)
}

func sessionFrom(r *http.Request) model.Session {
	userID, _ := r.Context().Value(middleware.UserIDKey).(string)
	name, _ := r.Context().Value(middleware.UserNameKey).(string)
	return model.Session{UserID: userID, Name: name}
}

func publishStatus(err error) int {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrPublishInProgress):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
