package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-attendance/internal/web/handlers"
	"github.com/kozaktomas/face-attendance/internal/web/middleware"
	"github.com/kozaktomas/face-attendance/internal/web/static"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.deps.Health)
	attendanceHandler := handlers.NewAttendanceHandler(s.deps.Reports)
	peopleHandler := handlers.NewPeopleHandler(s.deps.Directory)
	classesHandler := handlers.NewClassesHandler(s.deps.Classes)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", healthHandler.Get)

	if s.deps.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireToken(s.config.Web.Token))

		// Attendance
		r.Get("/attendance/today", attendanceHandler.Today)
		r.Get("/attendance/{date}", attendanceHandler.OnDate)
		r.Get("/attendance/{date}/summary", attendanceHandler.Summary)

		// People
		r.Get("/people", peopleHandler.List)
		r.Get("/people/{role}/{id}", peopleHandler.Get)

		// Classes
		r.Get("/classes", classesHandler.List)
	})

	s.router.With(middleware.SecurityHeaders()).Get("/", s.serveDashboard)
}

// serveDashboard serves the embedded attendance page
func (s *Server) serveDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(static.Dashboard())
}
