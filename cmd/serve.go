package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/dashboard"
	"github.com/sells-group/prospect-cli/internal/job"
	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/notify"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/internal/view"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		notices := &notify.Latest{}
		ctrl := newController(cfg, newBackend(cfg), notices)
		if err := ctrl.Mount(ctx); err != nil {
			zap.L().Warn("serve: initial load failed", zap.Error(err))
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           newRouter(ctx, ctrl, notices, cfg.Server),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		if cfg.Server.AutoRefreshSecs > 0 {
			g.Go(func() error {
				autoRefresh(gctx, ctrl, loadNotifier(cfg), time.Duration(cfg.Server.AutoRefreshSecs)*time.Second)
				return nil
			})
		}
		return g.Wait()
	},
}

// loadNotifier reports background load failures to the log and the webhook.
// They stay out of the page flash, which already shows the stale-data error.
func loadNotifier(c *config.Config) notify.Notifier {
	return notify.Multi{notify.Log{}, notify.NewWebhook(c.Notify)}
}

// autoRefresh reloads the results every interval until ctx is done. Failed
// loads are reported to n.
func autoRefresh(ctx context.Context, ctrl *dashboard.Controller, n notify.Notifier, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := ctrl.Refresh(ctx)
			if err == nil || ctx.Err() != nil {
				continue
			}
			if nerr := n.Notify(ctx, notify.Notice{
				Kind:      notify.KindLoadFailed,
				Message:   "auto refresh failed",
				Detail:    err.Error(),
				Transient: resilience.IsTransient(err),
				Timestamp: time.Now().UTC(),
			}); nerr != nil {
				zap.L().Warn("serve: load failure notice not delivered", zap.Error(nerr))
			}
		}
	}
}

// newRouter builds the dashboard routes. Form submissions run against ctx so
// a search outlives the request that started it.
func newRouter(ctx context.Context, ctrl *dashboard.Controller, notices *notify.Latest, sc config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: sc.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	h := &dashboardHandler{ctx: ctx, ctrl: ctrl, notices: notices, refreshSecs: sc.AutoRefreshSecs}

	r.Get("/", h.page)
	r.Post("/search", h.formSearch)
	r.Post("/refresh", h.formRefresh)
	r.Get("/export", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, ctrl.ExportURL(), http.StatusFound)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/leads", h.apiLeads)
		r.Post("/search", h.apiSearch)
		r.Post("/refresh", h.apiRefresh)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

type dashboardHandler struct {
	ctx         context.Context
	ctrl        *dashboard.Controller
	notices     *notify.Latest
	refreshSecs int
}

func criteriaFrom(r *http.Request) lead.Criteria {
	q := r.URL.Query()
	return lead.Criteria{Query: q.Get("q"), Activity: q.Get("activity"), City: q.Get("city")}
}

func (h *dashboardHandler) page(w http.ResponseWriter, r *http.Request) {
	criteria := criteriaFrom(r)
	summary := h.ctrl.Summary()
	inputs := h.ctrl.Inputs()
	all := h.ctrl.Records(lead.Criteria{})

	data := view.PageData{
		Keyword:    inputs.Keyword,
		ZipCode:    inputs.ZipCode,
		SubmitOpen: !summary.Busy,
		Busy:       summary.Busy,
		LastError:  summary.LastError,
		ExportURL:  h.ctrl.ExportURL(),
		Filter:     criteria,
		Activities: lead.Activities(all),
		Summary:    summary.Summary,
		Leads:      lead.Filter(all, criteria),
		RefreshSec: h.refreshSecs,
	}
	if summary.Busy {
		data.RefreshSec = 5
	}
	if n, ok := h.notices.Take(); ok {
		data.Notice = n.Message
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.WritePage(w, data); err != nil {
		zap.L().Error("serve: render page", zap.Error(err))
	}
}

func (h *dashboardHandler) formSearch(w http.ResponseWriter, r *http.Request) {
	req := job.Request{Keyword: r.FormValue("keyword"), ZipCode: r.FormValue("zipcode")}
	h.ctrl.SetKeyword(req.Keyword)
	h.ctrl.SetZipCode(req.ZipCode)

	if err := req.Validate(); err != nil {
		h.reject(r.Context(), err)
	} else {
		go func() {
			err := h.ctrl.SubmitRequest(h.ctx, req)
			switch {
			case err == nil, resilience.IsTransport(err):
				// Transport failures already produced a notice.
			case errors.Is(err, job.ErrInFlight), resilience.IsValidation(err):
				h.reject(h.ctx, err)
			default:
				zap.L().Error("serve: background search failed", zap.Error(err))
			}
		}()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *dashboardHandler) formRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Refresh(r.Context()); err != nil {
		zap.L().Warn("serve: refresh failed", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *dashboardHandler) reject(ctx context.Context, err error) {
	_ = h.notices.Notify(ctx, notify.Notice{
		Kind:      notify.KindRejected,
		Message:   err.Error(),
		Timestamp: time.Now(),
	})
}

type leadsResponse struct {
	Summary dashboard.Summary `json:"summary"`
	Leads   []lead.Display    `json:"leads"`
}

func (h *dashboardHandler) apiLeads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, leadsResponse{
		Summary: h.ctrl.Summary(),
		Leads:   h.ctrl.Records(criteriaFrom(r)),
	})
}

func (h *dashboardHandler) apiSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keyword string `json:"keyword"`
		Zipcode string `json:"zipcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	err := h.ctrl.Search(r.Context(), req.Keyword, req.Zipcode)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, h.ctrl.Summary())
	case resilience.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, job.ErrInFlight):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case resilience.IsTransport(err):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": job.FailureMessage})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (h *dashboardHandler) apiRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Refresh(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Summary())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("serve: write response", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
