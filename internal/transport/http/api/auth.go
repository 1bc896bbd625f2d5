package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aryanarora07/podlyze/internal/domain/auth"
	httptransport "github.com/aryanarora07/podlyze/internal/transport/http"
)

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Account *auth.Account `json:"account"`
	Token   string        `json:"token"`
}

func (s *Service) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "name, email and password are required")
		return
	}

	account, token, err := s.accounts.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if errors.Is(err, auth.ErrEmailTaken) {
		httptransport.RespondError(c, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.logger.ErrorTag("HTTP", "signup: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, authResponse{Account: account, Token: token}, "account created")
}

func (s *Service) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	account, token, err := s.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		httptransport.RespondError(c, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		s.logger.ErrorTag("HTTP", "login: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, authResponse{Account: account, Token: token}, "")
}
