package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/dmorgan81/tryonbot/internal/asset"
	"github.com/dmorgan81/tryonbot/internal/handler"
	"github.com/dmorgan81/tryonbot/internal/image"
	"github.com/dmorgan81/tryonbot/internal/log"
	"github.com/dmorgan81/tryonbot/internal/page"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do"
)

const previewEdge = 512

type Server struct {
	handler   *handler.Handler
	templator *page.Templator
	router    *mux.Router
}

func New(h *handler.Handler, templator *page.Templator, gatherer prometheus.Gatherer) *Server {
	s := &Server{handler: h, templator: templator}

	r := mux.NewRouter()
	r.Use(logRequests)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleGenerate).Methods(http.MethodPost)
	r.HandleFunc("/api/generate", s.handleAPIGenerate).Methods(http.MethodPost)
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router = r

	return s
}

func NewServer(i *do.Injector) (*Server, error) {
	return New(
		do.MustInvoke[*handler.Handler](i),
		do.MustInvoke[*page.Templator](i),
		do.MustInvoke[*prometheus.Registry](i),
	), nil
}

func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	logger := log.FromContextOrDiscard(ctx).WithGroup("server").With("addr", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, page.NewParams())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	input, err := parseInput(w, r)

	params := page.NewParams()
	params.Category = input.Category
	params.StyleNotes = input.StyleNotes
	params.PersonImage = preview(r.Context(), input.Person)
	params.GarmentImage = preview(r.Context(), input.Garment)

	if err != nil {
		if errors.Is(err, errMissingImages) {
			params.Warning = missingImagesWarning
		} else {
			params.Error = err.Error()
		}
		s.render(w, r, http.StatusBadRequest, params)
		return
	}

	out := s.handler.Handle(r.Context(), input)
	params.Texts = out.Result.Texts
	switch out.Result.Outcome {
	case image.OutcomeImage:
		params.ResultImage = template.URL(asset.DataURI(out.PNG))
	case image.OutcomeNoImage:
		params.NoResult = true
	default:
		params.Error = out.Result.Message()
	}
	s.render(w, r, http.StatusOK, params)
}

type apiResponse struct {
	Outcome     string   `json:"outcome"`
	Instruction string   `json:"instruction,omitempty"`
	Texts       []string `json:"texts,omitempty"`
	Image       string   `json:"image,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func (s *Server) handleAPIGenerate(w http.ResponseWriter, r *http.Request) {
	input, err := parseInput(w, r)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, errMissingImages) {
			msg = missingImagesWarning
		}
		writeJSON(r.Context(), w, http.StatusBadRequest, apiResponse{Outcome: "invalid", Error: msg})
		return
	}

	out := s.handler.Handle(r.Context(), input)
	resp := apiResponse{
		Outcome:     out.Result.Outcome.String(),
		Instruction: out.Instruction,
		Texts:       out.Result.Texts,
		Error:       out.Result.Message(),
	}
	status := http.StatusOK
	if out.Result.Outcome == image.OutcomeFailed {
		status = http.StatusBadGateway
	}
	if len(out.PNG) > 0 {
		resp.Image = base64.StdEncoding.EncodeToString(out.PNG)
	}
	writeJSON(r.Context(), w, status, resp)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, params page.Params) {
	html, err := s.templator.Template(r.Context(), params)
	if err != nil {
		log.FromContextOrDiscard(r.Context()).Error("rendering page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(html)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContextOrDiscard(ctx).Error("writing response", "error", err)
	}
}

func preview(ctx context.Context, a *asset.Asset) template.URL {
	if a == nil {
		return ""
	}
	data, err := a.Fit(previewEdge).PNG()
	if err != nil {
		log.FromContextOrDiscard(ctx).Warn("rendering preview", "error", err)
		return ""
	}
	return template.URL(asset.DataURI(data))
}
