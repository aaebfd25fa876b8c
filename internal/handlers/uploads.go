package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jeremyjsx/creativelab/internal/storage"
)

const maxCoverBytes = 5 << 20

var coverTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// UploadCover stores a cover image under covers/ and returns its public URL.
// The content type is sniffed from the file rather than trusted from the client.
func UploadCover(st storage.Storage, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeError(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "asset storage is not configured", nil)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxCoverBytes+1<<20)
		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "cover images must be 5MB or smaller", nil)
				return
			}
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "multipart field \"file\" is required", nil)
			return
		}
		defer file.Close()

		if header.Size > maxCoverBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "cover images must be 5MB or smaller", nil)
			return
		}

		head := make([]byte, 512)
		n, err := io.ReadFull(file, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "could not read file", nil)
			return
		}
		head = head[:n]
		contentType := http.DetectContentType(head)
		ext, ok := coverTypes[contentType]
		if !ok {
			writeError(w, http.StatusBadRequest, "UNSUPPORTED_MEDIA_TYPE", "cover must be a PNG, JPEG, WebP or GIF image", map[string]string{
				"content_type": contentType,
			})
			return
		}

		key := "covers/" + uuid.NewString() + "." + ext
		if err := st.Upload(r.Context(), key, io.MultiReader(bytes.NewReader(head), file), contentType); err != nil {
			logger.Error("cover upload failed", "key", key, "error", err)
			writeError(w, http.StatusBadGateway, "UPLOAD_FAILED", "could not store the image", nil)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"key": key, "url": st.PublicURL(key)})
	}
}
