package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/vendly/vendly/internal/guard"
	"github.com/vendly/vendly/internal/orgcontext"
)

const (
	HeaderOrg = "X-Org-ID"

	contextUserIDKey = "user_id"
	contextOrgIDKey  = "org_id"
)

// SessionContext resolves the session cookie into a user identity. An
// absent or invalid session leaves the request anonymous; the guard
// pipelines decide whether that is acceptable for the route.
func (s *Server) SessionContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			c.Next()
			return
		}

		sess, err := s.authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(contextUserIDKey, sess.UserID)
		ctx := orgcontext.WithUserID(c.Request.Context(), snowflake.ID(sess.UserID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// OrgContext resolves the organization addressed by the route, from the
// :orgId path parameter or the X-Org-ID header.
func (s *Server) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.Param("orgId"))
		if raw == "" {
			raw = strings.TrimSpace(c.GetHeader(HeaderOrg))
		}
		if raw == "" {
			c.Next()
			return
		}

		orgID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || orgID <= 0 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		c.Set(contextOrgIDKey, orgID)
		ctx := orgcontext.WithOrgID(c.Request.Context(), snowflake.ID(orgID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Guard evaluates a pipeline against the request identity. Denials with
// a redirect target carry it in a Location header and the body so the
// SPA can route the user.
func (s *Server) Guard(p *guard.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := guard.Subject{
			UserID: s.currentUserID(c),
			OrgID:  s.currentOrgID(c),
		}

		decision, err := p.Evaluate(c.Request.Context(), subject)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if decision.Allow {
			s.stampRole(c, subject)
			c.Next()
			return
		}

		status := decision.Status
		if decision.RedirectTo != "" {
			if status == 0 {
				status = http.StatusSeeOther
			}
			c.Header("Location", decision.RedirectTo)
			c.AbortWithStatusJSON(status, gin.H{
				"error": gin.H{
					"type":        "access_denied",
					"redirect_to": decision.RedirectTo,
				},
			})
			return
		}
		c.AbortWithStatusJSON(status, gin.H{
			"error": gin.H{
				"type":    "access_denied",
				"message": "access denied",
			},
		})
	}
}

// GuardPage is Guard for browser navigations: a denial with a
// redirect target becomes a real 303 instead of a JSON body.
func (s *Server) GuardPage(p *guard.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := guard.Subject{
			UserID: s.currentUserID(c),
			OrgID:  s.currentOrgID(c),
		}

		decision, err := p.Evaluate(c.Request.Context(), subject)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if decision.Allow {
			s.stampRole(c, subject)
			c.Next()
			return
		}

		if decision.RedirectTo != "" {
			c.Redirect(http.StatusSeeOther, decision.RedirectTo)
			c.Abort()
			return
		}
		status := decision.Status
		if status == 0 {
			status = http.StatusForbidden
		}
		c.AbortWithStatus(status)
	}
}

// stampRole records the role the guard evaluation resolved (and cached)
// into the request context, for handlers and the request log.
func (s *Server) stampRole(c *gin.Context, subject guard.Subject) {
	if s.roleCache == nil {
		return
	}
	role, ok := s.roleCache.GetRole(subject.OrgID, subject.UserID)
	if !ok {
		return
	}
	c.Request = c.Request.WithContext(orgcontext.WithRole(c.Request.Context(), role))
}

func (s *Server) currentUserID(c *gin.Context) int64 {
	if v, ok := c.Get(contextUserIDKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

func (s *Server) currentOrgID(c *gin.Context) int64 {
	if v, ok := c.Get(contextOrgIDKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
