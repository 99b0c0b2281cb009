package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/UnownHash/Coastline/db_store"
	"github.com/UnownHash/Coastline/names"
)

const (
	DEFAULT_HISTORY_LIMIT = 20
	MAX_HISTORY_LIMIT     = 200
)

func (srv *HTTPServer) handleGetNames(c *gin.Context) {
	type getNamesResponse struct {
		Islands   []string `json:"islands"`
		Countries []string `json:"countries"`
	}

	c.JSON(http.StatusOK, getNamesResponse{
		Islands:   names.Islands(),
		Countries: names.Countries(),
	})
}

func (srv *HTTPServer) handleGetHistory(c *gin.Context) {
	type getHistoryResponse struct {
		Searches []*db_store.Search `json:"searches"`
	}

	limit := DEFAULT_HISTORY_LIMIT
	if limitStr := c.Query("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, &APIErrorResponse{
				Error: "malformed limit",
			})
			return
		}
		if limit > MAX_HISTORY_LIMIT {
			limit = MAX_HISTORY_LIMIT
		}
	}

	searches, err := srv.history.GetRecentSearches(c.Request.Context(), limit)
	if err != nil {
		srv.logger.Errorf("GetHistory: failed to query searches: %v", err)
		c.JSON(http.StatusInternalServerError, &APIErrorResponse{
			Error: "an internal error occurred: check the logs",
		})
		return
	}

	if searches == nil {
		searches = []*db_store.Search{}
	}

	c.JSON(http.StatusOK, getHistoryResponse{searches})
}
