package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"vyruchaiBack/internal/models"
	"vyruchaiBack/internal/services"
	"vyruchaiBack/utils"
)

const (
	maxPhotoSize  = 10 << 20
	maxTaskPhotos = 5
)

type TaskHandler struct {
	TaskService *services.TaskService
	Storage     *utils.Storage
}

// ListOpenTasks returns open tasks, optionally limited to the map
// viewport passed as north/south/east/west.
func (h *TaskHandler) ListOpenTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := models.TaskFilter{}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	if q.Get("north") != "" {
		bounds, err := parseBounds(q.Get("north"), q.Get("south"), q.Get("east"), q.Get("west"))
		if err != nil {
			http.Error(w, "Invalid map bounds", http.StatusBadRequest)
			return
		}
		filter.Bounds = bounds
	}

	tasks, err := h.TaskService.ListOpenTasks(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

func parseBounds(north, south, east, west string) (*models.MapBounds, error) {
	var b models.MapBounds
	var err error
	if b.North, err = strconv.ParseFloat(north, 64); err != nil {
		return nil, err
	}
	if b.South, err = strconv.ParseFloat(south, 64); err != nil {
		return nil, err
	}
	if b.East, err = strconv.ParseFloat(east, 64); err != nil {
		return nil, err
	}
	if b.West, err = strconv.ParseFloat(west, 64); err != nil {
		return nil, err
	}
	return &b, nil
}

// NearbyTasks answers "what can I help with around me" through the
// GEO index.
func (h *TaskHandler) NearbyTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lon, err1 := strconv.ParseFloat(q.Get("lon"), 64)
	lat, err2 := strconv.ParseFloat(q.Get("lat"), 64)
	if err1 != nil || err2 != nil {
		http.Error(w, "Invalid coordinates", http.StatusBadRequest)
		return
	}
	radius, err := strconv.ParseFloat(q.Get("radius_km"), 64)
	if err != nil || radius <= 0 {
		radius = 5
	}

	tasks, err := h.TaskService.NearbyTasks(r.Context(), lon, lat, radius)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	task, err := h.TaskService.GetTaskByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.TaskService.CreateTask(r.Context(), callerID(r), task)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	task.ID = id

	updated, err := h.TaskService.UpdateTask(r.Context(), callerID(r), task)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	if err := h.TaskService.DeleteTask(r.Context(), id, callerID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) GetMyTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.TaskService.GetTasksByUserID(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

func (h *TaskHandler) GetMyExecutions(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.TaskService.GetTasksByExecutorID(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	if err := h.TaskService.CompleteTask(r.Context(), id, callerID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	if err := h.TaskService.CancelTask(r.Context(), id, callerID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadPhotos stores up to maxTaskPhotos multipart images in S3 and
// returns their URLs; the client attaches them to the task payload.
func (h *TaskHandler) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	if h.Storage == nil {
		http.Error(w, "File storage is not available", http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		http.Error(w, "Files too large", http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		http.Error(w, "Missing photos", http.StatusBadRequest)
		return
	}
	if len(files) > maxTaskPhotos {
		files = files[:maxTaskPhotos]
	}

	urls := make([]string, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			http.Error(w, "Failed to read file", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize))
		file.Close()
		if err != nil {
			http.Error(w, "Failed to read file", http.StatusBadRequest)
			return
		}

		name := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(header.Filename))
		url, err := h.Storage.UploadFile(data, name, "tasks")
		if err != nil {
			http.Error(w, "Failed to upload file", http.StatusInternalServerError)
			return
		}
		urls = append(urls, url)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"photos": urls})
}
