package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"
)

const maxPhotoSize = 16 * 1024 * 1024 // 16 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the stdlib sniffer has no
// WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

func (s *Server) countUpload(outcome string) {
	if s.metrics != nil {
		s.metrics.Uploads.WithLabelValues(outcome).Inc()
	}
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1<<20)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		s.countUpload("rejected")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to parse form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.countUpload("rejected")
		writeError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.countUpload("error")
		s.logger.Error("read upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		s.countUpload("rejected")
		writeError(w, http.StatusBadRequest, "unsupported image format")
		return
	}

	photo, err := s.gallery.Upload(r.Context(), imageData, mimeType)
	if err != nil {
		s.countUpload("error")
		s.fail(w, r, err, "upload photo")
		return
	}

	s.countUpload("ok")
	writeJSON(w, http.StatusCreated, photo)
}

func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := s.gallery.List(r.Context())
	if err != nil {
		s.fail(w, r, err, "list photos")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(photos))
}

func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := s.gallery.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err, "delete photo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	reader, mimeType, err := s.gallery.Open(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "get photo")
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "photo_id", id, "error", err)
	}
}

func (s *Server) handleGetThumbnail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	thumb, err := s.gallery.Thumbnail(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "get thumbnail")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(thumb)))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := w.Write(thumb); err != nil {
		s.logger.Error("write thumbnail failed", "photo_id", id, "error", err)
	}
}
