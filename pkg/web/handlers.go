package web

import (
	"errors"
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/tauraamui/stilldaemon/pkg/guard"
	"github.com/tauraamui/stilldaemon/pkg/log"
	"github.com/tauraamui/stilldaemon/pkg/storage"
)

const streamBoundary = "frame"

// handleStream serves the live view as a multipart JPEG stream until the
// client goes away. Frames are skipped while a capture holds the camera.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(streamBoundary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+streamBoundary)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	defer mw.Close()

	flusher, _ := w.(http.Flusher)
	for {
		data, err := s.capturer.StreamFrame(ctx)
		switch {
		case err == nil:
			if err := writeStreamPart(mw, data); err != nil {
				log.Debug("Live view client went away: %v", err)
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		case errors.Is(err, guard.ErrBusy) || errors.Is(err, guard.ErrTimeout):
			s.busyLog.Printf("Camera busy, pausing live view")
		default:
			if ctx.Err() != nil {
				return
			}
			log.Debug("Live view frame unavailable: %v", err)
		}

		if err := s.sleep(ctx, s.settings.StreamInterval); err != nil {
			return
		}
	}
}

func writeStreamPart(mw *multipart.Writer, data []byte) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", "image/jpeg")
	header.Set("Content-Length", strconv.Itoa(len(data)))
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if s.bucket.TakeAvailable(1) == 0 {
		http.Error(w, "Too many capture requests, try again later", http.StatusTooManyRequests)
		return
	}

	rec, ok := s.capturer.Trigger(r.Context(), "http "+r.URL.Path)
	if !ok {
		http.Error(w, "Capture failed or SD not mounted", http.StatusInternalServerError)
		return
	}

	ref := downloadRef(rec.Path, s.capturer.Resolver().Candidates())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Saved: %s\nDownload URL: /download?file=%s\n", rec.Path, url.QueryEscape(ref))
}

// downloadRef strips the mount prefix from a saved path so the download
// handler's fallbacks can find it wherever the card is mounted next time.
func downloadRef(path string, candidates []string) string {
	for _, c := range candidates {
		c = filepath.Clean(c)
		if c == storage.FilesystemRoot {
			continue
		}
		if prefix := c + "/"; strings.HasPrefix(path, prefix) {
			return strings.TrimPrefix(path, prefix)
		}
	}
	return strings.TrimPrefix(path, "/")
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("file")
	if len(name) == 0 {
		http.Error(w, "Missing file parameter", http.StatusBadRequest)
		return
	}

	file, info, err := s.capturer.Resolver().Locate(name)
	if err != nil {
		log.Debug("Download of %s failed: %v", name, err)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	h := w.Header()
	h.Set("Content-Type", contentType(name))
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(name)))
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	h.Set("Content-Length", strconv.FormatInt(info.Size(), 10))

	if _, err := io.Copy(w, file); err != nil {
		log.Debug("Download of %s interrupted: %v", name, err)
	}
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".htm", ".html":
		return "text/html"
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	resolver := s.capturer.Resolver()

	sb := strings.Builder{}
	sb.WriteString("<!doctype html><html><head><meta charset='utf-8'><title>stilldaemon</title></head><body>")
	sb.WriteString("<h2>Files on storage</h2>")

	root, err := resolver.Resolve()
	switch {
	case errors.Is(err, storage.ErrNoMedium):
		sb.WriteString("SD card not mounted.<br>")
	case err != nil:
		sb.WriteString("SD mounted but unable to access mountpoint.<br>")
	default:
		sb.WriteString("<p>Listing for: " + html.EscapeString(root.Path) + "</p>")
		writeListing(&sb, resolver.Fs(), root)
	}

	sb.WriteString("<hr><small>Use /download?file=img_... to download, /snap to take a photo now or / for the live view</small></body></html>")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, sb.String())
}

func writeListing(sb *strings.Builder, fs afero.Fs, root storage.Root) {
	err := afero.Walk(fs, root.Path, func(path string, info os.FileInfo, err error) error {
		if err != nil || path == root.Path {
			return nil
		}
		rel, relErr := filepath.Rel(root.Path, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			sb.WriteString("<b>" + html.EscapeString(rel) + "/</b><br>")
			return nil
		}
		// only files directly under the root can be downloaded
		if strings.Contains(rel, "/") {
			sb.WriteString(fmt.Sprintf("%s (%d bytes)<br>", html.EscapeString(rel), info.Size()))
			return nil
		}
		sb.WriteString(fmt.Sprintf(
			"<a href=\"/download?file=%s\">%s</a> (%d bytes)<br>",
			url.QueryEscape(rel), html.EscapeString(rel), info.Size(),
		))
		return nil
	})
	if err != nil {
		sb.WriteString("Failed to open directory at " + html.EscapeString(root.Path) + "<br>")
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, s.capturer.Status())
}
