package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/AdamBeresnev/tennis-fun/internal/backend"
	"github.com/AdamBeresnev/tennis-fun/internal/httputil"
	"github.com/AdamBeresnev/tennis-fun/internal/live"
	"github.com/AdamBeresnev/tennis-fun/internal/middleware"
	"github.com/AdamBeresnev/tennis-fun/internal/service"
	"github.com/AdamBeresnev/tennis-fun/internal/store"
	"github.com/AdamBeresnev/tennis-fun/internal/tournament"
	"github.com/AdamBeresnev/tennis-fun/internal/utils"
	"github.com/AdamBeresnev/tennis-fun/views"
)

const (
	flashKey      = "flash"
	flashErrorKey = "flash_error"
)

type boardService interface {
	Snapshot(ctx context.Context) (live.Snapshot, error)
	Refresh(ctx context.Context) error
	Place(ctx context.Context, player string) (tournament.Slot, error)
	ClearMatch(ctx context.Context, groupID int64) error
	Report(ctx context.Context, r tournament.Report) (*tournament.MatchResult, error)
	CreateNextRound(ctx context.Context, requested int) (int, error)
}

type tournamentService interface {
	CreateTournament(ctx context.Context, in service.NewTournament) (*tournament.Summary, error)
	ActiveTournaments(ctx context.Context) ([]tournament.Summary, error)
	ArchivedTournaments(ctx context.Context) ([]tournament.Summary, error)
	Archive(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	ArchivedSnapshot(ctx context.Context, id int64) (*store.ArchivedSnapshot, error)
}

type credentialChecker interface {
	CheckCredentials(email, password string) error
}

type healthChecker interface {
	Health(ctx context.Context) error
}

type application struct {
	sessions       *scs.SessionManager
	board          boardService
	tournaments    tournamentService
	auth           credentialChecker
	backend        healthChecker
	hub            http.Handler
	allowedOrigins []string
	logger         *slog.Logger
}

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok", "backend": "ok"}
		code := http.StatusOK
		if err := app.backend.Health(r.Context()); err != nil {
			app.logger.Warn("backend health check failed", "error", err)
			status["status"] = "degraded"
			status["backend"] = backend.Message(err, "unreachable")
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, status)
	})

	r.With(cors.Handler(cors.Options{
		AllowedOrigins: app.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	})).Get("/api/board", func(w http.ResponseWriter, r *http.Request) {
		snap, err := app.board.Snapshot(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to read board", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, newBoardResponse(snap))
	})

	r.Handle("/ws", app.hub)

	r.Group(func(r chi.Router) {
		r.Use(app.sessions.LoadAndSave)
		r.Use(middleware.LoadAdmin(app.sessions))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			active, err := app.tournaments.ActiveTournaments(r.Context())
			if err != nil {
				app.logger.Warn("failed to list active tournaments", "error", err)
			}
			views.Render(w, r, http.StatusOK, views.Landing(active, app.sessions.PopString(r.Context(), flashKey)))
		})

		r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
			next := safeRedirect(r.URL.Query().Get("next"), "/admin")
			if middleware.IsAdmin(r.Context()) {
				http.Redirect(w, r, next, http.StatusFound)
				return
			}
			views.Render(w, r, http.StatusOK, views.LoginPage("", next, ""))
		})

		r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				httputil.BadRequest(w, "Invalid form data", err)
				return
			}
			email := r.Form.Get("email")
			next := safeRedirect(r.Form.Get("next"), "/admin")

			if err := app.auth.CheckCredentials(email, r.Form.Get("password")); err != nil {
				if errors.Is(err, service.ErrInvalidCredentials) {
					views.Render(w, r, http.StatusUnauthorized, views.LoginPage(email, next, "Wrong email or password"))
					return
				}
				httputil.InternalServerError(w, "Failed to check credentials", err)
				return
			}
			if err := middleware.LogIn(r.Context(), app.sessions); err != nil {
				httputil.InternalServerError(w, "Failed to start session", err)
				return
			}
			http.Redirect(w, r, next, http.StatusSeeOther)
		})

		r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
			if err := middleware.LogOut(r.Context(), app.sessions); err != nil {
				httputil.InternalServerError(w, "Failed to end session", err)
				return
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
		})

		r.Get("/ongoing", func(w http.ResponseWriter, r *http.Request) {
			app.renderBoard(w, r, http.StatusOK, "")
		})

		r.Get("/archive", func(w http.ResponseWriter, r *http.Request) {
			archived, err := app.tournaments.ArchivedTournaments(r.Context())
			if err != nil {
				httputil.BackendError(w, "Failed to load archived tournaments", err)
				return
			}
			views.Render(w, r, http.StatusOK, views.ArchivePage(archived, middleware.IsAdmin(r.Context()), app.sessions.PopString(r.Context(), flashKey)))
		})

		r.Get("/archive/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := idParam(w, r, "id")
			if !ok {
				return
			}
			snap, err := app.tournaments.ArchivedSnapshot(r.Context(), id)
			if err != nil {
				if errors.Is(err, backend.ErrNotFound) || errors.Is(err, service.ErrNotArchived) {
					httputil.NotFound(w, "Archived tournament not found", err)
					return
				}
				httputil.BackendError(w, "Failed to load tournament", err)
				return
			}
			data := views.PrepareBoardData(snap.Tournament, snap.Results, nil, true, middleware.IsAdmin(r.Context()))
			views.Render(w, r, http.StatusOK, views.BoardPage(data, "", "", false))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
				app.renderAdmin(w, r, http.StatusOK, views.AdminData{
					Flash: app.sessions.PopString(r.Context(), flashKey),
					Error: app.sessions.PopString(r.Context(), flashErrorKey),
				})
			})

			r.Post("/admin/tournaments", func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
					httputil.BadRequest(w, "Invalid form data", err)
					return
				}
				form, err := parseTournamentForm(r)
				if err != nil {
					httputil.BadRequest(w, "Failed to read participant file", err)
					return
				}

				summary, err := app.tournaments.CreateTournament(r.Context(), form)
				if err != nil {
					status, msg := http.StatusBadGateway, backend.Message(err, "Failed to create tournament")
					if isRosterError(err) {
						status, msg = http.StatusBadRequest, err.Error()
					} else {
						app.logger.Error("failed to create tournament", "error", err)
					}
					app.renderAdmin(w, r, status, views.AdminData{Error: msg, Form: form})
					return
				}

				app.refreshBoard(r.Context())
				app.sessions.Put(r.Context(), flashKey, fmt.Sprintf("Tournament created (id %d)", summary.ID))
				http.Redirect(w, r, "/", http.StatusSeeOther)
			})

			r.Post("/admin/tournaments/{id}/archive", func(w http.ResponseWriter, r *http.Request) {
				id, ok := idParam(w, r, "id")
				if !ok {
					return
				}
				app.lifecycle(w, r, app.tournaments.Archive(r.Context(), id), "Tournament archived", "Failed to archive tournament")
			})

			r.Post("/admin/tournaments/{id}/delete", func(w http.ResponseWriter, r *http.Request) {
				id, ok := idParam(w, r, "id")
				if !ok {
					return
				}
				app.lifecycle(w, r, app.tournaments.Delete(r.Context(), id), "Tournament deleted", "Failed to delete tournament")
			})

			r.Post("/admin/tournaments/delete-all", func(w http.ResponseWriter, r *http.Request) {
				app.lifecycle(w, r, app.tournaments.DeleteAll(r.Context()), "All tournaments deleted", "Failed to delete tournaments")
			})

			r.Post("/ongoing/place", func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseForm(); err != nil {
					httputil.BadRequest(w, "Invalid form data", err)
					return
				}
				if _, err := app.board.Place(r.Context(), r.Form.Get("player")); err != nil {
					app.boardError(w, r, err, "Failed to place player")
					return
				}
				http.Redirect(w, r, "/ongoing", http.StatusSeeOther)
			})

			r.Post("/ongoing/groups/{groupID}/clear", func(w http.ResponseWriter, r *http.Request) {
				groupID, ok := idParam(w, r, "groupID")
				if !ok {
					return
				}
				if err := app.board.ClearMatch(r.Context(), groupID); err != nil {
					app.boardError(w, r, err, "Failed to clear match")
					return
				}
				http.Redirect(w, r, "/ongoing", http.StatusSeeOther)
			})

			r.Get("/ongoing/groups/{groupID}/report", func(w http.ResponseWriter, r *http.Request) {
				groupID, ok := idParam(w, r, "groupID")
				if !ok {
					return
				}
				q := r.URL.Query()
				player1, player2 := q.Get("player1"), q.Get("player2")

				snap, err := app.board.Snapshot(r.Context())
				if err != nil {
					httputil.InternalServerError(w, "Failed to read board", err)
					return
				}
				if snap.Tournament == nil {
					httputil.NotFound(w, "No active tournament", nil)
					return
				}
				g, found := snap.Tournament.Group(groupID)
				if !found {
					httputil.NotFound(w, "Match not found", nil)
					return
				}
				if player1 == player2 || !g.HasParticipant(player1) || !g.HasParticipant(player2) {
					httputil.BadRequest(w, "Players do not belong to this match", nil)
					return
				}

				var existing *tournament.MatchResult
				if res, found := tournament.FindResult(snap.Results[groupID], player1, player2); found {
					existing = &res
				}
				views.Render(w, r, http.StatusOK, views.ReportPage(views.ReportFormFor(groupID, player1, player2, existing)))
			})

			r.Post("/ongoing/groups/{groupID}/report", func(w http.ResponseWriter, r *http.Request) {
				groupID, ok := idParam(w, r, "groupID")
				if !ok {
					return
				}
				if err := r.ParseForm(); err != nil {
					httputil.BadRequest(w, "Invalid form data", err)
					return
				}
				form := views.ReportForm{
					GroupID: groupID,
					Player1: r.Form.Get("player1"),
					Player2: r.Form.Get("player2"),
					Status:  tournament.MatchStatus(r.Form.Get("status")),
					Score1:  r.Form.Get("score1"),
					Score2:  r.Form.Get("score2"),
					Winner:  r.Form.Get("winner"),
				}

				report := tournament.Report{
					GroupID: groupID,
					Player1: form.Player1,
					Player2: form.Player2,
					Status:  form.Status,
					Winner:  form.Winner,
				}
				var err1, err2 error
				report.Score1, err1 = utils.IntOrNil(form.Score1)
				report.Score2, err2 = utils.IntOrNil(form.Score2)
				if err := errors.Join(err1, err2); err != nil {
					form.Error = "Scores must be whole numbers"
					views.Render(w, r, http.StatusBadRequest, views.ReportPage(form))
					return
				}

				if _, err := app.board.Report(r.Context(), report); err != nil {
					status, msg := reportErrorStatus(err)
					if status >= http.StatusInternalServerError {
						app.logger.Error("failed to report match", "group", groupID, "error", err)
					}
					form.Error = msg
					views.Render(w, r, status, views.ReportPage(form))
					return
				}
				http.Redirect(w, r, "/ongoing", http.StatusSeeOther)
			})

			r.Post("/ongoing/next-round", func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseForm(); err != nil {
					httputil.BadRequest(w, "Invalid form data", err)
					return
				}
				requested, err := utils.IntOrNil(r.Form.Get("numberOfPlayers"))
				if err != nil {
					app.renderBoard(w, r, http.StatusBadRequest, "Number of players must be a whole number")
					return
				}
				n, err := app.board.CreateNextRound(r.Context(), utils.OrZero(requested))
				if err != nil {
					app.boardError(w, r, err, "Failed to create next round")
					return
				}
				app.sessions.Put(r.Context(), flashKey, fmt.Sprintf("%s created with %d players", tournament.NextRoundTitle(n), n))
				http.Redirect(w, r, "/ongoing", http.StatusSeeOther)
			})
		})
	})

	return r
}

func (app *application) renderBoard(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	snap, err := app.board.Snapshot(r.Context())
	if err != nil {
		httputil.InternalServerError(w, "Failed to read board", err)
		return
	}
	data := views.PrepareBoardData(snap.Tournament, snap.Results, snap.Slots, false, middleware.IsAdmin(r.Context()))
	data.Version = snap.Version
	data.LastError = snap.LastError
	views.Render(w, r, status, views.BoardPage(data, app.sessions.PopString(r.Context(), flashKey), errMsg, true))
}

// boardError shows a failed board operation inline on the board.
func (app *application) boardError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, msg := boardErrorStatus(err, fallback)
	if status >= http.StatusInternalServerError {
		app.logger.Error(fallback, "error", err)
	} else {
		app.logger.Warn(fallback, "error", err)
	}
	app.renderBoard(w, r, status, msg)
}

func (app *application) renderAdmin(w http.ResponseWriter, r *http.Request, status int, data views.AdminData) {
	active, err := app.tournaments.ActiveTournaments(r.Context())
	if err != nil {
		app.logger.Warn("failed to list active tournaments", "error", err)
		if data.Error == "" {
			data.Error = backend.Message(err, "Failed to load active tournaments")
		}
	}
	data.Active = active
	views.Render(w, r, status, views.AdminPage(data))
}

// lifecycle finishes an archive or delete action with a flash message.
func (app *application) lifecycle(w http.ResponseWriter, r *http.Request, err error, done, failed string) {
	if err != nil {
		app.logger.Error(failed, "error", err)
		app.sessions.Put(r.Context(), flashErrorKey, backend.Message(err, failed))
	} else {
		app.refreshBoard(r.Context())
		app.sessions.Put(r.Context(), flashKey, done)
	}
	http.Redirect(w, r, safeRedirect(r.FormValue("next"), "/admin"), http.StatusSeeOther)
}

func (app *application) refreshBoard(ctx context.Context) {
	if err := app.board.Refresh(ctx); err != nil {
		app.logger.Warn("failed to refresh board", "error", err)
	}
}

func boardErrorStatus(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, live.ErrNoActiveTournament),
		errors.Is(err, live.ErrUnknownGroup):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, tournament.ErrEmptyPlayerName),
		errors.Is(err, tournament.ErrPlayerAlreadyPlaced),
		errors.Is(err, tournament.ErrAllSlotsFilled),
		errors.Is(err, tournament.ErrResultReported),
		errors.Is(err, tournament.ErrGroupNotEmptyable),
		errors.Is(err, tournament.ErrRoundNotReady),
		errors.Is(err, tournament.ErrInvalidPlayerCount),
		errors.Is(err, tournament.ErrTournamentDecided):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, live.ErrResultsUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, live.ErrBoardStopped), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "The board is not available right now"
	}
	return http.StatusBadGateway, backend.Message(err, fallback)
}

func reportErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, tournament.ErrScoreMissing),
		errors.Is(err, tournament.ErrScoreOutOfRange),
		errors.Is(err, tournament.ErrNoWinningScore),
		errors.Is(err, tournament.ErrBothScoresWinning),
		errors.Is(err, tournament.ErrWinnerRequired),
		errors.Is(err, tournament.ErrWinnerNotInMatch),
		errors.Is(err, tournament.ErrRetiredScore),
		errors.Is(err, tournament.ErrUnknownStatus),
		errors.Is(err, tournament.ErrPlayersNotDistinct),
		errors.Is(err, live.ErrPlayerNotInGroup):
		return http.StatusBadRequest, err.Error()
	}
	return boardErrorStatus(err, "Failed to save result")
}

func isRosterError(err error) bool {
	for _, target := range []error{
		service.ErrNameRequired,
		service.ErrDateRequired,
		service.ErrInvalidDate,
		service.ErrNoParticipants,
		service.ErrGroupTooSmall,
		service.ErrGroupTooLarge,
		service.ErrDuplicatePlayer,
		service.ErrUnknownCourt,
		service.ErrUnknownGroupNumber,
		service.ErrDuplicateGroupNumber,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httputil.BadRequest(w, "Invalid id", err)
		return 0, false
	}
	return id, true
}

// safeRedirect only follows local paths.
func safeRedirect(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
