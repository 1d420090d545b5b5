package handler

import (
	"net/http"

	"github.com/ampplex/influencerflow/internal/service"
)

type MonitorHandler struct {
	Service *service.MonitorService
}

func (h *MonitorHandler) InstagramMonitor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PostURL string `json:"postUrl"`
	}
	if err := DecodeJSON(w, r, &body); err != nil {
		WriteError(w, r, err)
		return
	}

	post, err := h.Service.InstagramPost(r.Context(), body.PostURL)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, post)
}

func (h *MonitorHandler) YouTubeMonitor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VideoURL string `json:"videoUrl"`
	}
	if err := DecodeJSON(w, r, &body); err != nil {
		WriteError(w, r, err)
		return
	}

	video, err := h.Service.YouTubeVideo(r.Context(), body.VideoURL)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, video)
}

func (h *MonitorHandler) InstagramPosts(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Service.InstagramPosts(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

func (h *MonitorHandler) InstagramByUsernameAndID(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		PostID   string `json:"postId"`
	}
	if err := DecodeJSON(w, r, &body); err != nil {
		WriteError(w, r, err)
		return
	}

	post, err := h.Service.InstagramPostByUsername(r.Context(), body.Username, body.PostID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, post)
}

func (h *MonitorHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URLs []string `json:"urls"`
	}
	if err := DecodeJSON(w, r, &body); err != nil {
		WriteError(w, r, err)
		return
	}

	results, err := h.Service.MonitorBatch(r.Context(), body.URLs)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"results": results})
}
