package httpserver

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"

	"github.com/UnownHash/Coastline/nominatim"
	"github.com/UnownHash/Coastline/overlay"
	"github.com/UnownHash/Coastline/scene"
	"github.com/UnownHash/Coastline/sessions"
)

const MAX_ZOOM = 24

type APIErrorResponse struct {
	Error string `json:"error"`
}

type APILatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (ll APILatLon) valid() bool {
	return !math.IsNaN(ll.Lon) && !math.IsInf(ll.Lon, 0) && ll.Lat >= -90 && ll.Lat <= 90
}

// APISceneResponse is returned by every map endpoint. The browser
// redraws the map from Scene and shows Status.
type APISceneResponse struct {
	State    overlay.State           `json:"state"`
	Status   overlay.Status          `json:"status"`
	Scene    scene.Snapshot          `json:"scene"`
	Overlays []overlay.OverlayRecord `json:"overlays"`
	Result   *overlay.SearchResult   `json:"result,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

func sceneResponse(session *sessions.Session) *APISceneResponse {
	ctl := session.Controller
	overlays := ctl.Overlays()
	if overlays == nil {
		overlays = []overlay.OverlayRecord{}
	}
	return &APISceneResponse{
		State:    ctl.State(),
		Status:   ctl.Status(),
		Scene:    session.Scene.Snapshot(),
		Overlays: overlays,
	}
}

func searchErrorStatusCode(err error) int {
	switch {
	case errors.Is(err, overlay.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, nominatim.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, overlay.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, nominatim.ErrLookupFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (srv *HTTPServer) handleGetScene(c *gin.Context) {
	c.JSON(http.StatusOK, sceneResponse(getSession(c)))
}

func (srv *HTTPServer) handleSearch(c *gin.Context) {
	type searchRequest struct {
		Name   string     `json:"name"`
		Center *APILatLon `json:"center"`
		Zoom   *int       `json:"zoom"`
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srv.logger.Warnf("Search: bad request body: %v", err)
		c.JSON(http.StatusBadRequest, &APIErrorResponse{
			Error: "malformed search request",
		})
		return
	}

	session := getSession(c)

	var result *overlay.SearchResult
	var err error

	// the search is centered on wherever the browser's map is now
	if req.Center != nil {
		if !req.Center.valid() {
			c.JSON(http.StatusBadRequest, &APIErrorResponse{
				Error: "invalid center",
			})
			return
		}
		zoom := session.Scene.View().Zoom
		if req.Zoom != nil {
			if *req.Zoom < 0 || *req.Zoom > MAX_ZOOM {
				c.JSON(http.StatusBadRequest, &APIErrorResponse{
					Error: "invalid zoom",
				})
				return
			}
			zoom = *req.Zoom
		}
		result, err = session.Controller.SearchAt(c.Request.Context(), req.Name, orb.Point{req.Center.Lon, req.Center.Lat}, zoom)
	} else {
		result, err = session.Controller.Search(c.Request.Context(), req.Name)
	}

	resp := sceneResponse(session)
	if err != nil {
		resp.Error = err.Error()
		c.JSON(searchErrorStatusCode(err), resp)
		return
	}

	resp.Result = result
	c.JSON(http.StatusOK, resp)
}

func (srv *HTTPServer) handleClear(c *gin.Context) {
	session := getSession(c)
	session.Controller.Clear()
	c.JSON(http.StatusOK, sceneResponse(session))
}

// handleLocate takes the outcome of the browser's geolocation request.
// Geolocation failures are not request failures: the response carries
// the error status with a 200.
func (srv *HTTPServer) handleLocate(c *gin.Context) {
	type locateRequest struct {
		Lat         *float64 `json:"lat"`
		Lon         *float64 `json:"lon"`
		ErrorCode   int      `json:"error_code"`
		Unsupported bool     `json:"unsupported"`
	}

	var req locateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srv.logger.Warnf("Locate: bad request body: %v", err)
		c.JSON(http.StatusBadRequest, &APIErrorResponse{
			Error: "malformed locate request",
		})
		return
	}

	reported := overlay.ReportedPosition{
		ErrorCode:   req.ErrorCode,
		Unsupported: req.Unsupported,
	}

	if req.ErrorCode == 0 && !req.Unsupported {
		if req.Lat == nil || req.Lon == nil {
			c.JSON(http.StatusBadRequest, &APIErrorResponse{
				Error: "lat and lon are required",
			})
			return
		}
		ll := APILatLon{Lat: *req.Lat, Lon: *req.Lon}
		if !ll.valid() {
			c.JSON(http.StatusBadRequest, &APIErrorResponse{
				Error: "invalid position",
			})
			return
		}
		reported.Position = &orb.Point{ll.Lon, ll.Lat}
	}

	session := getSession(c)

	_, err := session.Controller.Locate(c.Request.Context(), reported)

	resp := sceneResponse(session)
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (srv *HTTPServer) handleGetOverlaysAt(c *gin.Context) {
	type getOverlaysAtResponse struct {
		Overlays []overlay.OverlayRecord `json:"overlays"`
	}

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, &APIErrorResponse{
			Error: "lat and lon query parameters are required",
		})
		return
	}

	var overlays []overlay.OverlayRecord

	// a click never creates a session: no session, no overlays
	id, _ := c.Cookie(srv.sessionManager.Config().CookieName)
	if session := srv.sessionManager.Lookup(id); session != nil {
		overlays = session.Controller.OverlaysAt(lat, lon)
	}
	if overlays == nil {
		overlays = []overlay.OverlayRecord{}
	}

	c.JSON(http.StatusOK, getOverlaysAtResponse{overlays})
}
