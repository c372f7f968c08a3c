package httpapi

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	idb "habit_reminder_service/internal/infra/database"
)

// allowedPictureExts is the extension allow-list for profile pictures. The
// check is by sanitized extension only; content sniffing is the storage
// layer's concern.
var allowedPictureExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// sanitizeFilename strips directory components and control characters from a
// client-supplied filename. Browsers normally send a bare name, but the field
// is attacker-controlled and must never influence a filesystem path.
func sanitizeFilename(name string) string {
	// Take the last path element for both separator conventions.
	name = name[strings.LastIndexAny(name, `/\`)+1:]

	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
			// drop control characters
		case r == '/' || r == '\\' || r == ':':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// pictureExt validates the upload's filename and returns its lowercase
// extension, or false when the extension is not allowed.
func pictureExt(filename string) (string, bool) {
	clean := sanitizeFilename(filename)
	ext := strings.ToLower(filepath.Ext(clean))
	if !allowedPictureExts[ext] {
		return "", false
	}
	return ext, true
}

// handleUploadProfilePicture accepts a multipart upload in the "picture"
// field. The stored name is generated server-side; the client filename is
// used only to derive the extension.
func (s *Server) handleUploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.uploadMaxBytes)
	if err := r.ParseMultipartForm(s.uploadMaxBytes); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing picture field")
		return
	}
	defer file.Close()

	ext, ok := pictureExt(header.Filename)
	if !ok {
		respondError(w, http.StatusUnsupportedMediaType, "unsupported picture type")
		return
	}

	storedName, err := s.profiles.SavePicture(r.Context(), userID, ext, file)
	if err != nil {
		if errors.Is(err, idb.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.WithError(err).Error("Failed to save profile picture")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"file": storedName})
}
