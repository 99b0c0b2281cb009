package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UnownHash/Coastline/sessions"
)

const sessionContextKey = "coastline.session"

// withSession attaches the caller's map session, creating one (and its
// cookie) when needed.
func (srv *HTTPServer) withSession(c *gin.Context) {
	cookieName := srv.sessionManager.Config().CookieName

	id, _ := c.Cookie(cookieName)

	session, created, err := srv.sessionManager.Get(id)
	if err != nil {
		srv.logger.Errorf("failed to create session: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, APIErrorResponse{
			Error: "an internal error occurred: check the logs",
		})
		return
	}

	if created {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, session.Id, 0, "/", "", false, true)
	}

	c.Set(sessionContextKey, session)
	c.Next()
}

func getSession(c *gin.Context) *sessions.Session {
	return c.MustGet(sessionContextKey).(*sessions.Session)
}
