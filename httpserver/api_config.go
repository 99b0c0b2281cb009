package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UnownHash/Coastline/overlay"
	"github.com/UnownHash/Coastline/sessions"
)

func (srv *HTTPServer) handleReload(c *gin.Context) {
	type reloadResponse struct {
		Message string `json:"message"`
	}

	if srv.reloadFn == nil {
		c.JSON(http.StatusNotImplemented, APIErrorResponse{
			Error: "reloading is not supported",
		})
		return
	}

	err := srv.reloadFn()
	if err != nil {
		srv.logger.Error(err)
		c.JSON(http.StatusInternalServerError, APIErrorResponse{
			Error: "an internal error occurred: check the logs",
		})
		return
	}

	srv.logger.Infof("config reloaded")

	c.JSON(http.StatusOK, reloadResponse{
		Message: "config has been reloaded",
	})
}

func (srv *HTTPServer) handleGetConfig(c *gin.Context) {
	type configResponse struct {
		OverlayConfig  overlay.Config  `json:"overlay"`
		SessionsConfig sessions.Config `json:"sessions"`
	}

	type getConfigResponse struct {
		Config configResponse `json:"config"`
	}

	var resp getConfigResponse
	resp.Config.OverlayConfig = srv.sessionManager.OverlayConfig()
	resp.Config.SessionsConfig = srv.sessionManager.Config()

	c.JSON(http.StatusOK, resp)
}
