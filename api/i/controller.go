package i

import "github.com/gin-gonic/gin"

// Controller contributes routes to the v1 API group.
type Controller interface {
	// RegisterPublic adds routes reachable without a control token, such as
	// snapshots, history, plots and the leaderboard.
	RegisterPublic(v1 *gin.RouterGroup)

	// RegisterProtected adds routes that mutate the running simulation. The
	// group already carries the control token middleware.
	RegisterProtected(v1 *gin.RouterGroup)
}
