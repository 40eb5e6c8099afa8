package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/articflow/agentlink/internal/jobs"
	"github.com/articflow/agentlink/internal/model"
	"github.com/articflow/agentlink/internal/monitoring"
	"github.com/articflow/agentlink/internal/store"
)

var servePort int

// shutdownTimeout bounds the graceful drain of requests and running jobs.
const shutdownTimeout = 30 * time.Second

// jobSubmitter starts report jobs. *jobs.Runner implements it.
type jobSubmitter interface {
	Submit(ctx context.Context, kind model.JobKind, req model.ReportRequest) (*model.Job, error)
}

// metricsSource snapshots job health. *monitoring.Collector implements it.
type metricsSource interface {
	Collect(ctx context.Context, lookbackHours int) (*monitoring.MetricsSnapshot, error)
}

// jobReader reads job state. store.Store implements it.
type jobReader interface {
	GetJob(ctx context.Context, id string) (*model.Job, error)
	ListJobs(ctx context.Context, filter model.JobFilter) ([]model.Job, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the report API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, breakers, err := initPipeline(cfg)
		if err != nil {
			return err
		}
		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runner := jobs.NewRunner(st, p, jobs.Options{
			MaxConcurrent: cfg.Jobs.MaxConcurrent,
			Timeout:       cfg.Jobs.Timeout(),
		})

		purger := jobs.NewPurger(st, cfg.Jobs.TTL())
		if err := purger.Start(cfg.Jobs.PurgeSchedule); err != nil {
			return err
		}
		defer purger.Stop()

		collector := monitoring.NewCollector(st, breakers, time.Duration(cfg.Monitoring.StuckAfterMins)*time.Minute)
		checker := monitoring.NewChecker(collector, monitoring.NewAlerter(cfg.Monitoring), cfg.Monitoring)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(runner, st, collector, cfg.Monitoring.LookbackWindowHours),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			checker.Run(gctx)
			return nil
		})
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
			return runner.Close(sctx)
		})
		return g.Wait()
	},
}

// newRouter wires the report API. metrics may be nil.
func newRouter(jobsSvc jobSubmitter, reader jobReader, metrics metricsSource, lookbackHours int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-agents-report", submitHandler(jobsSvc, model.JobKindAgents))
		r.Post("/generate-agency-report", submitHandler(jobsSvc, model.JobKindAgencies))
		r.Get("/job-status/{jobID}", jobStatusHandler(reader))
		r.Get("/jobs", listJobsHandler(reader))
		if metrics != nil {
			r.Get("/metrics", metricsHandler(metrics, lookbackHours))
		}
	})

	return r
}

func submitHandler(svc jobSubmitter, kind model.JobKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.ReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Suburb == "" {
			writeError(w, http.StatusBadRequest, "suburb is required")
			return
		}

		job, err := svc.Submit(r.Context(), kind, req)
		if err != nil {
			zap.L().Error("submit job failed", zap.String("kind", string(kind)), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not start job")
			return
		}

		zap.L().Info("job accepted",
			zap.String("job_id", job.ID),
			zap.String("kind", string(kind)),
			zap.String("suburb", job.Suburb),
		)
		writeJSON(w, http.StatusAccepted, map[string]string{
			"job_id": job.ID,
			"status": string(model.JobStatusProcessing),
		})
	}
}

// jobStatusResponse is the polling view of a job.
type jobStatusResponse struct {
	JobID    string          `json:"job_id"`
	Status   model.JobStatus `json:"status"`
	Progress int             `json:"progress"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func jobStatusHandler(reader jobReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := reader.GetJob(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "job not found")
				return
			}
			zap.L().Error("get job failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not load job")
			return
		}

		writeJSON(w, http.StatusOK, jobStatusResponse{
			JobID:    job.ID,
			Status:   job.Status,
			Progress: job.Status.Progress(),
			Result:   job.Result,
			Error:    job.Error,
		})
	}
}

func listJobsHandler(reader jobReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := model.JobFilter{Status: model.JobStatus(r.URL.Query().Get("status"))}
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			filter.Limit = n
		}

		list, err := reader.ListJobs(r.Context(), filter)
		if err != nil {
			zap.L().Error("list jobs failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not list jobs")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func metricsHandler(metrics metricsSource, lookbackHours int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours := lookbackHours
		if v := r.URL.Query().Get("hours"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "invalid hours")
				return
			}
			hours = n
		}

		snap, err := metrics.Collect(r.Context(), hours)
		if err != nil {
			zap.L().Error("collect metrics failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not collect metrics")
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
