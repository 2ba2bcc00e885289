package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fertigation.io/farmwatch/internal/access"
	"fertigation.io/farmwatch/internal/api/middleware"
	"fertigation.io/farmwatch/internal/domain"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/pkg/logger"
	"fertigation.io/farmwatch/internal/usecase"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Profile   domain.Profile `json:"profile"`
}

type destination struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type navigationResponse struct {
	Authenticated bool          `json:"authenticated"`
	Role          domain.Role   `json:"role,omitempty"`
	Destinations  []destination `json:"destinations"`
	Permissions   []string      `json:"permissions"`
}

type meResponse struct {
	Profile      domain.Profile `json:"profile"`
	Destinations []destination  `json:"destinations"`
	Permissions  []string       `json:"permissions"`
}

// Signup handles POST /auth/signup. The new account starts as a Farmer and
// is signed in immediately.
func (s *Server) Signup(c *gin.Context) {
	var req usecase.SignupInput
	if !bindJSON(c, &req) {
		return
	}
	profile, err := s.accounts.Signup(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	s.issueSession(c, http.StatusCreated, profile)
}

// Login handles POST /auth/login.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := s.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	s.issueSession(c, http.StatusOK, profile)
}

func (s *Server) issueSession(c *gin.Context, status int, profile domain.Profile) {
	token, claims, err := middleware.GenerateToken(s.jwtCfg, profile)
	if err != nil {
		fail(c, apperrors.Wrap(err, apperrors.CodeTokenIssueFailed, "failed to issue session token", http.StatusInternalServerError))
		return
	}
	c.JSON(status, sessionResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
		Profile:   profile,
	})
}

// Logout handles POST /auth/logout by revoking the presented token until it
// would have expired anyway.
func (s *Server) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		fail(c, apperrors.Unauthorized(apperrors.CodeUnauthorized, "not authenticated"))
		return
	}

	until := time.Now().Add(s.jwtCfg.ExpiresIn)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.revocations.Revoke(ctx, claims.ID, until); err != nil {
		fail(c, apperrors.Wrap(err, apperrors.CodeLogoutFailed, "failed to revoke session token", http.StatusInternalServerError))
		return
	}

	if s.audit != nil {
		if err := s.audit.LogAction(ctx, "profile.logout", "profile", claims.UserID, claims.UserID, nil); err != nil {
			logger.Warn("audit log write failed",
				zap.Error(err),
				zap.String("action", "profile.logout"),
				zap.String("user_id", claims.UserID),
			)
		}
	}
	c.Status(http.StatusNoContent)
}

// GetMe handles GET /auth/me.
func (s *Server) GetMe(c *gin.Context) {
	ctx := c.Request.Context()
	session := middleware.SessionFrom(ctx)

	profile, err := s.store.Profiles.Get(ctx, session.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			fail(c, apperrors.NotFoundf(apperrors.CodeProfileNotFound, "profile", session.UserID))
			return
		}
		fail(c, apperrors.ReadFailed(err, "profile"))
		return
	}

	c.JSON(http.StatusOK, meResponse{
		Profile:      profile,
		Destinations: destinationsFor(session),
		Permissions:  permissionsFor(session),
	})
}

// GetNavigation handles GET /navigation. Anonymous callers get the public
// destinations only.
func (s *Server) GetNavigation(c *gin.Context) {
	session := middleware.SessionFrom(c.Request.Context())
	resp := navigationResponse{
		Authenticated: session.Authenticated,
		Destinations:  destinationsFor(session),
		Permissions:   permissionsFor(session),
	}
	if session.Authenticated {
		resp.Role = session.Role
	}
	c.JSON(http.StatusOK, resp)
}

func destinationsFor(session access.Session) []destination {
	dests := access.Destinations(session)
	out := make([]destination, 0, len(dests))
	for _, d := range dests {
		out = append(out, destination{Name: string(d), Path: d.Path()})
	}
	return out
}

func permissionsFor(session access.Session) []string {
	out := []string{}
	if !session.Authenticated {
		return out
	}
	for _, a := range access.Permissions(session.Role) {
		out = append(out, string(a))
	}
	return out
}
