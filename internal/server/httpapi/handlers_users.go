package httpapi

import (
	"net/http"
	"time"

	"github.com/dkrylov/medvault/internal/server/auth"
)

type signUpRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

type signInRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type verifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	OTP         string `json:"otp"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in signUpRequest
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}

	_, err := s.users.SignUp(r.Context(), in.Name, in.PhoneNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Sign-up successful. OTP sent to phone."})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var in signInRequest
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := s.users.SignIn(r.Context(), in.PhoneNumber); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent successfully. Check your phone."})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var in verifyOTPRequest
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := s.users.ConfirmOTP(r.Context(), in.PhoneNumber, in.OTP)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := auth.GenerateToken(user.PhoneNumber, auth.ScopeSession, s.secretKey, s.sessionValidity)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(s.sessionValidity),
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP successfully verified"})
}
