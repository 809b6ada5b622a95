package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"moddingway/appeals"
	"moddingway/model"
	"moddingway/utils"

	"github.com/go-chi/chi/v5"
)

type formRequest struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

type reviewRequest struct {
	FormID     int64  `json:"form_id"`
	Approval   *bool  `json:"approval"`
	ApproverID string `json:"approver_id"`
}

func (s *Server) listBanForms(w http.ResponseWriter, r *http.Request) {
	listPage(s, w, r, countForms, "Forms retrieved", s.deps.Store.ListBanForms, s.deps.Store.CountBanForms)
}

func (s *Server) getBanForm(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, err := strconv.ParseInt(chi.URLParam(r, "formID"), 10, 64)
	if err != nil || id < 1 {
		respondError(w, start, http.StatusBadRequest, "form id must be a positive integer")
		return
	}
	form, err := s.deps.Appeals.Get(r.Context(), id)
	if err != nil {
		s.appealError(w, r, start, err)
		return
	}
	respondSuccess(w, start, http.StatusOK, "Form retrieved", form)
}

func (s *Server) submitBanForm(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req formRequest
	if err := decode(r, &req); err != nil {
		respondError(w, start, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		respondError(w, start, http.StatusBadRequest, "user_id is required")
		return
	}

	form, err := s.deps.Appeals.Submit(r.Context(), req.UserID, req.Reason)
	if err != nil {
		s.appealError(w, r, start, err)
		return
	}
	s.counts.Delete(countForms)
	respondSuccess(w, start, http.StatusCreated, "User "+req.UserID+"'s form has been submitted", form)
}

func (s *Server) reviewBanForm(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req reviewRequest
	if err := decode(r, &req); err != nil {
		respondError(w, start, http.StatusBadRequest, err.Error())
		return
	}
	switch {
	case req.FormID < 1:
		respondError(w, start, http.StatusBadRequest, "form_id is required")
		return
	case req.Approval == nil:
		respondError(w, start, http.StatusBadRequest, "approval is required")
		return
	case strings.TrimSpace(req.ApproverID) == "":
		respondError(w, start, http.StatusBadRequest, "approver_id is required")
		return
	}

	res, err := s.deps.Appeals.Review(r.Context(), req.FormID, *req.Approval, req.ApproverID)
	if err != nil {
		s.appealError(w, r, start, err)
		return
	}
	if *req.Approval {
		s.counts.Delete(countBanned)
	}

	type reviewResponse struct {
		Form     *model.BanForm `json:"form"`
		UnbanErr string         `json:"unban_error,omitempty"`
	}
	out := reviewResponse{Form: res.Form}
	if res.UnbanErr != nil {
		out.UnbanErr = res.UnbanErr.Error()
	}
	respondSuccess(w, start, http.StatusOK, "Form "+strconv.FormatInt(req.FormID, 10)+" has been updated", out)
}

func (s *Server) appealError(w http.ResponseWriter, r *http.Request, start time.Time, err error) {
	switch {
	case errors.Is(err, appeals.ErrFormNotFound), errors.Is(err, appeals.ErrNoRecord):
		respondError(w, start, http.StatusNotFound, err.Error())
	case errors.Is(err, appeals.ErrNotBanned),
		errors.Is(err, utils.ErrEmptyReason), errors.Is(err, utils.ErrReasonTooLong):
		respondError(w, start, http.StatusBadRequest, err.Error())
	default:
		s.internalError(w, r, start, err)
	}
}
