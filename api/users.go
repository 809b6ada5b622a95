package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"moddingway/exile"
	"moddingway/logging"
	"moddingway/model"
	"moddingway/strikes"
	"moddingway/utils/database"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

const (
	countUsers  = "users"
	countMods   = "mods"
	countBanned = "banned"
	countForms  = "forms"
)

func parsePage(r *http.Request) (limit, offset int, err error) {
	limit, offset = defaultLimit, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxLimit {
			return 0, 0, fmt.Errorf("limit must be between 1 and %d", maxLimit)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

// count returns a cached total, computing it on a miss.
func (s *Server) count(ctx context.Context, key string, compute func(context.Context) (int, error)) (int, error) {
	if v, ok := s.counts.Get(key); ok {
		return v.(int), nil
	}
	n, err := compute(ctx)
	if err != nil {
		return 0, err
	}
	s.counts.Set(key, n, cache.DefaultExpiration)
	return n, nil
}

// listPage answers a paginated listing with its cached total.
func listPage[T any](s *Server, w http.ResponseWriter, r *http.Request, countKey, message string,
	list func(ctx context.Context, limit, offset int) ([]T, error),
	total func(ctx context.Context) (int, error)) {
	start := time.Now()
	limit, offset, err := parsePage(r)
	if err != nil {
		respondError(w, start, http.StatusBadRequest, err.Error())
		return
	}

	items, err := list(r.Context(), limit, offset)
	if err != nil {
		s.internalError(w, r, start, err)
		return
	}
	n, err := s.count(r.Context(), countKey, total)
	if err != nil {
		s.internalError(w, r, start, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	respondSuccess(w, start, http.StatusOK, message, Page[T]{
		Items:  items,
		Total:  n,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	listPage(s, w, r, countUsers, "Users retrieved", s.deps.Store.ListUsers, s.deps.Store.CountUsers)
}

func (s *Server) listMods(w http.ResponseWriter, r *http.Request) {
	listPage(s, w, r, countMods, "Users retrieved",
		func(ctx context.Context, limit, offset int) ([]model.User, error) {
			return s.deps.Store.ListUsersByRole(ctx, model.RoleMod, limit, offset)
		},
		func(ctx context.Context) (int, error) {
			return s.deps.Store.CountUsersByRole(ctx, model.RoleMod)
		})
}

func (s *Server) listBannedUsers(w http.ResponseWriter, r *http.Request) {
	listPage(s, w, r, countBanned, "Users retrieved", s.deps.Store.ListBannedUsers, s.deps.Store.CountBannedUsers)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, err := s.deps.Store.GetUser(r.Context(), chi.URLParam(r, "discordID"))
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, start, http.StatusNotFound, "User not found in database")
		return
	}
	if err != nil {
		s.internalError(w, r, start, err)
		return
	}
	respondSuccess(w, start, http.StatusOK, "User retrieved", user)
}

func (s *Server) getUserStrikes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, list, err := s.deps.Ledger.UserStrikes(r.Context(), chi.URLParam(r, "discordID"))
	if err != nil {
		s.serviceError(w, r, start, err)
		return
	}
	if list == nil {
		list = []model.Strike{}
	}
	respondSuccess(w, start, http.StatusOK, "Strikes retrieved", struct {
		User    *model.User    `json:"user"`
		Strikes []model.Strike `json:"strikes"`
	}{user, list})
}

func (s *Server) getUserExiles(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	list, err := s.deps.Exiles.UserExiles(r.Context(), chi.URLParam(r, "discordID"))
	if err != nil {
		s.serviceError(w, r, start, err)
		return
	}
	if list == nil {
		list = []model.Exile{}
	}
	respondSuccess(w, start, http.StatusOK, "Exiles retrieved", list)
}

func (s *Server) listActiveExiles(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	list, err := s.deps.Exiles.ActiveExiles(r.Context())
	if err != nil {
		s.internalError(w, r, start, err)
		return
	}
	if list == nil {
		list = []model.UserExile{}
	}
	respondSuccess(w, start, http.StatusOK, "Active exiles retrieved", list)
}

// serviceError maps moderation sentinel errors to client errors and everything else to a 500.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, start time.Time, err error) {
	for _, e := range []error{exile.ErrNoRecord, strikes.ErrNoRecord, strikes.ErrStrikeNotFound} {
		if errors.Is(err, e) {
			respondError(w, start, http.StatusNotFound, e.Error())
			return
		}
	}
	for _, e := range []error{
		exile.ErrNotVerified, exile.ErrNotExiled, strikes.ErrInvalidSeverity,
	} {
		if errors.Is(err, e) {
			respondError(w, start, http.StatusBadRequest, e.Error())
			return
		}
	}
	s.internalError(w, r, start, err)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, start time.Time, err error) {
	logging.Error("API request failed", "request_id", requestID(r.Context()), "path", r.URL.Path, "error", err)
	respondError(w, start, http.StatusInternalServerError, "Internal server error")
}
