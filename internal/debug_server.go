package internal

import (
	"chatroom/contract"
	"chatroom/observability"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UsersResponse is the body of GET /users.
type UsersResponse struct {
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// NewDebugRouter builds the read-only debug API:
//
//	GET /users   online usernames in join order
//	GET /stats   room counters
//	GET /healthz liveness
func NewDebugRouter(directory contract.IDirectory, stats *observability.RoomStats) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/users", func(c *gin.Context) {
		names := directory.SnapshotNames()
		if names == nil {
			names = []string{}
		}
		c.JSON(http.StatusOK, UsersResponse{Count: len(names), Users: names})
	})

	r.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, stats.Snapshot())
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
