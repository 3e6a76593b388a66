package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"glassngold/internal/encoder"
	"glassngold/internal/pipeline"
	"glassngold/internal/portfolio"
	"glassngold/internal/render"

	"go.uber.org/zap"
)

// uploadField is the multipart field carrying the image.
const uploadField = "image"

type pageCopy struct {
	Brand, Tagline                  string
	UploadHeading, UploadSubheading string
	PrivacyHeading, PrivacyBody     string
	PortfolioHeading                string
	LoadingHeading, LoadingBody     string
	AgentStatus, NewDeal            string
}

var defaultCopy = pageCopy{
	Brand:            render.Brand,
	Tagline:          render.Tagline,
	UploadHeading:    render.UploadHeading,
	UploadSubheading: render.UploadSubheading,
	PrivacyHeading:   render.PrivacyHeading,
	PrivacyBody:      render.PrivacyBody,
	PortfolioHeading: render.PortfolioHeading,
	LoadingHeading:   render.LoadingHeading,
	LoadingBody:      render.LoadingBody,
	AgentStatus:      render.AgentStatus,
	NewDeal:          render.NewDeal,
}

type pageData struct {
	Base    string
	Copy    pageCopy
	Items   []portfolio.HistoryItem
	Loading bool
	Error   string
}

var templateFuncs = template.FuncMap{
	// Items hold data URIs which html/template would otherwise sanitise away.
	"image": func(src string) template.URL {
		return template.URL(encoder.ImageOrFallback(src))
	},
	"fallback": func() template.URL { return template.URL(encoder.FallbackImage) },
	"date":     render.FormatDate,
	"iso": func(ms int64) string {
		return time.UnixMilli(ms).UTC().Format(time.RFC3339)
	},
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st := s.pipeline.State()
	items := make([]portfolio.HistoryItem, len(st.Items))
	for i, it := range st.Items {
		if strings.HasPrefix(it.ImageURL, "/") {
			it.ImageURL = s.base + it.ImageURL
		}
		items[i] = it
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	err := s.tmpl.ExecuteTemplate(w, "index.html", pageData{
		Base:    s.base,
		Copy:    defaultCopy,
		Items:   items,
		Loading: st.Loading,
		Error:   st.Error,
	})
	if err != nil {
		s.log.Error("failed to render page", zap.Error(err))
	}
}

func (s *Server) handleAppraise(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		if isTooLarge(err) {
			s.respondError(w, r, http.StatusRequestEntityTooLarge, "File too large, habibi. Keep it under the limit.")
			return
		}
		s.respondError(w, r, http.StatusBadRequest, "Expected a multipart upload.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[uploadField]
	if len(files) == 0 {
		s.respondError(w, r, http.StatusBadRequest, "No file in the \""+uploadField+"\" field.")
		return
	}

	// A client that goes away mid-appraisal does not cancel the commit.
	item, err := s.pipeline.Submit(context.WithoutCancel(r.Context()), encoder.FromMultipart(files[0]))
	if err != nil {
		var ve *encoder.ValidationError
		if errors.As(err, &ve) {
			s.respondError(w, r, http.StatusUnprocessableEntity, pipeline.MsgInvalidFile)
			return
		}
		s.respondError(w, r, http.StatusBadGateway, pipeline.MsgFailure)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, item)
		return
	}
	http.Redirect(w, r, s.base+"/", http.StatusSeeOther)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.State())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.pipeline.State()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"items":   len(st.Items),
		"loading": st.Loading,
	})
}

// respondError answers JSON clients with a status and message. Browser form
// posts are sent back to the page, where the pipeline error is displayed.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	if status == http.StatusUnprocessableEntity || status == http.StatusBadGateway {
		http.Redirect(w, r, s.base+"/", http.StatusSeeOther)
		return
	}
	http.Error(w, msg, status)
}

func isTooLarge(err error) bool {
	var tooBig *http.MaxBytesError
	return errors.As(err, &tooBig)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
