package handlers

import (
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/http/response"
	"github.com/maxaizer/club-portal/internal/services"
	"net/http"
)

type FileHandler struct {
	files *services.FileStore
}

func NewFileHandler(files *services.FileStore) *FileHandler {
	return &FileHandler{files: files}
}

func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	file, info, err := h.files.Open(r.PathValue("name"))
	if err != nil {
		response.Error(w, err)
		return
	}
	defer file.Close()

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, apperr.Validation("file is required", map[string]string{"file": "missing multipart field"}))
		return
	}
	defer file.Close()

	name, err := h.files.Save(file, header.Filename)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]string{"name": name, "url": "/api/files/" + name})
}
