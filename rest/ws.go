package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/KillerEXXD/hhcapture-sub002/logging"
)

// watchSession streams status updates to the capture UI. The UI uses them to
// enable and disable action inputs while the operator types.
func watchSession(c *gin.Context) {
	code := c.Param("code")
	updates, cancel, err := sessionManager.Subscribe(code)
	if err != nil {
		abortWithError(c, http.StatusNotFound, err)
		return
	}
	defer cancel()

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		restLogger.Error().
			Str(logging.SessionCodeKey, code).
			Msgf("Unable to accept websocket: %s", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := wsjson.Write(ctx, conn, update); err != nil {
				restLogger.Debug().
					Str(logging.SessionCodeKey, code).
					Msgf("Websocket write failed: %s", err)
				return
			}
		}
	}
}
