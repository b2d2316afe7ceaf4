package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/basetag/internal/storage"
)

const attachDir = "attachments"

// AttachmentHandler serves the files rendered notes embed from the vault's
// attachments directory. Notes and hidden files are never served.
type AttachmentHandler struct {
	dir string
}

// NewAttachmentHandler creates a handler rooted at the vault directory.
func NewAttachmentHandler(vaultRoot string) *AttachmentHandler {
	return &AttachmentHandler{dir: filepath.Join(vaultRoot, attachDir)}
}

// resolve maps a request name to a file below the attachments directory.
func (h *AttachmentHandler) resolve(name string) (string, bool) {
	if name == "" || strings.Contains(name, "\\") {
		return "", false
	}
	cleaned := path.Clean("/" + name)[1:]
	if cleaned == "" || cleaned != name || storage.IsMarkdown(cleaned) {
		return "", false
	}
	for _, seg := range strings.Split(cleaned, "/") {
		if seg == ".." || strings.HasPrefix(seg, ".") {
			return "", false
		}
	}
	return filepath.Join(h.dir, filepath.FromSlash(cleaned)), true
}

// ServeFile handles GET /attachments/*.
func (h *AttachmentHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, ok := h.resolve(chi.URLParam(r, "*"))
	if !ok {
		http.Error(w, "invalid attachment name", http.StatusBadRequest)
		return
	}
	f, err := os.Open(abs)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}
