package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/noahxzhu/timer-reminder/internal/model"
	"github.com/noahxzhu/timer-reminder/internal/storage"
	"github.com/noahxzhu/timer-reminder/internal/surface"
)

//go:embed templates/*
var templateFS embed.FS

// Scheduler is what the pages need beyond the surfaces.
type Scheduler interface {
	surface.Scheduler
	CancelAll(ctx context.Context) error
	Pending(ctx context.Context) ([]model.PendingNotification, error)
}

type NotificationCenter interface {
	Delivered(id string) (model.DeliveredNotification, bool)
	SetAuthorizationStatus(ctx context.Context, status model.AuthorizationStatus) error
}

type Server struct {
	store     surface.ReminderStore
	scheduler Scheduler
	center    NotificationCenter
	main      *surface.Main
	router    *http.ServeMux
}

func NewServer(store surface.ReminderStore, s Scheduler, center NotificationCenter, main *surface.Main) *Server {
	srv := &Server{
		store:     store,
		scheduler: s,
		center:    center,
		main:      main,
		router:    http.NewServeMux(),
	}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	// Main surface
	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.HandleFunc("POST /schedule", s.handleSchedule)
	s.router.HandleFunc("POST /authorize", s.handleAuthorize)
	s.router.HandleFunc("POST /cancel", s.handleCancel)

	// Expanded view of a delivered reminder
	s.router.HandleFunc("GET /notifications/{id}", s.handleContent)
	s.router.HandleFunc("POST /notifications/{id}/confirm", s.handleContentConfirm)

	// Settings deep-link target
	s.router.HandleFunc("GET /settings/notifications", s.handleSettings)
	s.router.HandleFunc("POST /settings/notifications", s.handleSettingsUpdate)

	s.router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type indexPage struct {
	View     surface.MainView
	Record   model.ReminderRecord
	Pending  []model.PendingNotification
	Outcome  string
	MinDelay model.Delay
	MaxDelay model.Delay
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// Every page load counts as the app coming to the foreground.
	s.main.Foreground(r.Context())

	pending, err := s.scheduler.Pending(r.Context())
	if err != nil {
		slog.Warn("Failed to list pending reminders", "error", err)
	}

	s.renderTemplate(w, "index.html", indexPage{
		View: s.main.View(),
		Record: model.ReminderRecord{
			LastScheduledSeconds: s.store.Get(storage.LastScheduledSeconds),
			NextReminderSeconds:  s.store.Get(storage.NextReminderSeconds),
		},
		Pending:  pending,
		Outcome:  r.URL.Query().Get("outcome"),
		MinDelay: model.MinDelay,
		MaxDelay: model.MaxDelay,
	})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if v := r.FormValue("seconds"); v != "" {
		delay, err := model.ParseDelay(v)
		if err != nil {
			http.Error(w, "Invalid delay: "+err.Error(), http.StatusBadRequest)
			return
		}
		s.main.SetDelay(delay.Int())
	}

	outcome := s.main.Confirm(r.Context())
	slog.Info("Main surface confirm", "outcome", outcome, "seconds", s.main.Delay().Int())

	http.Redirect(w, r, "/?outcome="+url.QueryEscape(outcome.String()), http.StatusSeeOther)
}

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	granted := s.main.RequestAuthorization(r.Context())
	slog.Info("Permission requested from main surface", "granted", granted)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.scheduler.CancelAll(r.Context()); err != nil {
		http.Error(w, "Failed to cancel reminders", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type contentPage struct {
	ID           string
	Title        string
	Body         string
	Delay        model.Delay
	MinDelay     model.Delay
	MaxDelay     model.Delay
	ConfirmTitle string
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	n, ok := s.center.Delivered(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	content := surface.NewContent(s.store, s.scheduler, surface.HostFunc(func() {}))
	delay := content.DidReceive(n)

	s.renderTemplate(w, "content.html", contentPage{
		ID:           id,
		Title:        n.Request.Content.Title,
		Body:         n.Request.Content.Body,
		Delay:        delay,
		MinDelay:     model.MinDelay,
		MaxDelay:     model.MaxDelay,
		ConfirmTitle: model.ConfirmTitle,
	})
}

func (s *Server) handleContentConfirm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	n, ok := s.center.Delivered(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	content := surface.NewContent(s.store, s.scheduler, surface.HostFunc(func() {}))
	content.DidReceive(n)

	if v := r.FormValue("seconds"); v != "" {
		delay, err := model.ParseDelay(v)
		if err != nil {
			http.Error(w, "Invalid delay: "+err.Error(), http.StatusBadRequest)
			return
		}
		content.SetDelay(delay.Int())
	}

	// Failures are already logged by the surface and never shown. Confirm
	// always dismisses the view, which here means going back to the main page.
	_ = content.Confirm(r.Context())

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type settingsPage struct {
	Status   model.AuthorizationStatus
	Statuses []model.AuthorizationStatus
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	status := s.scheduler.RefreshAuthorizationStatus(r.Context())
	s.renderTemplate(w, "settings.html", settingsPage{
		Status: status,
		Statuses: []model.AuthorizationStatus{
			model.StatusAuthorized,
			model.StatusProvisional,
			model.StatusEphemeral,
			model.StatusDenied,
		},
	})
}

func (s *Server) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	status, err := model.ParseAuthorizationStatus(r.FormValue("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.center.SetAuthorizationStatus(r.Context(), status); err != nil {
		http.Error(w, "Failed to update settings", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) renderTemplate(w http.ResponseWriter, tmplName string, data any) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+tmplName)
	if err != nil {
		http.Error(w, fmt.Sprintf("Template error: %v", err), http.StatusInternalServerError)
		return
	}
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, fmt.Sprintf("Execute error: %v", err), http.StatusInternalServerError)
	}
}
