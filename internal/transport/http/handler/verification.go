package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-verify-api/internal/application/verification"
	"github.com/go-verify-api/internal/domain"
	"github.com/go-verify-api/internal/pkg/validate"
)

// SendCodeRequest asks for a verification code to be issued and delivered.
type SendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyCodeRequest presents a candidate code for an identity.
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// VerificationHandler exposes the OTP issue/verify flow.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

func (h *VerificationHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "send":
		h.send(w, r)
	case "verify":
		h.verify(w, r)
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

func (h *VerificationHandler) send(w http.ResponseWriter, r *http.Request) {
	var req SendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	res, err := h.svc.IssueCode(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadRequest):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrDeliveryTimeout):
			// The code is stored; a resend replaces it.
			writeJSON(w, http.StatusGatewayTimeout, SendEnvelope{
				Delivered: false,
				Code:      res.Code,
				Error:     "verification code could not be delivered in time",
			})
		case errors.Is(err, domain.ErrDeliveryFailed):
			writeJSON(w, http.StatusBadGateway, SendEnvelope{
				Delivered: false,
				Code:      res.Code,
				Error:     "verification code could not be delivered",
			})
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, SendEnvelope{
		Delivered: res.Delivered,
		Message:   "verification code sent",
		Code:      res.Code,
	})
}

func (h *VerificationHandler) verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	outcome, err := h.svc.Verify(r.Context(), req.Email, req.OTP)
	if err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	switch outcome {
	case domain.VerifyValid:
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code verified"})
	case domain.VerifyMismatch:
		writeError(w, http.StatusUnauthorized, "incorrect code")
	default:
		// NotFound and Expired share one message so callers can't probe
		// whether a code was ever issued.
		writeError(w, http.StatusUnauthorized, "invalid or expired code")
	}
}
