// Package rest is the HTTP surface of the capture server. The transcription
// UI talks to these endpoints; every handler delegates to the session
// manager.
package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	cmap "github.com/orcaman/concurrent-map"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/KillerEXXD/hhcapture-sub002/engine"
	"github.com/KillerEXXD/hhcapture-sub002/logging"
	"github.com/KillerEXXD/hhcapture-sub002/session"
)

var restLogger = logging.GetZeroLogger("rest::rest", nil)
var sessionManager *session.Manager
var sessionLimiters = cmap.New()

//
// APP error definition
//
type appError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func abortWithError(c *gin.Context, code int, err error) {
	restLogger.Error().Msgf("%s %s failed: %s", c.Request.Method, c.FullPath(), err)
	c.IndentedJSON(code, appError{
		Code:    code,
		Message: err.Error(),
	})
	c.Error(err)
	c.Abort()
}

// sessionRateLimit throttles per session so a misbehaving client cannot
// hammer the engine.
func sessionRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")
		v, exists := sessionLimiters.Get(code)
		if !exists {
			v = rate.NewLimiter(rate.Limit(20), 40)
			sessionLimiters.Set(code, v)
		}
		limiter := v.(*rate.Limiter)
		if !limiter.Allow() {
			abortWithError(c, http.StatusTooManyRequests,
				fmt.Errorf("Too many requests for session %s", code))
			return
		}
		c.Next()
	}
}

func setupRouter(manager *session.Manager) *gin.Engine {
	sessionManager = manager
	r := gin.Default()

	r.POST("/session", newSession)
	sess := r.Group("/session/:code", sessionRateLimit())
	sess.POST("/action", commitAction)
	sess.POST("/board", setBoard)
	sess.POST("/process", processSection)
	sess.GET("/status", sectionStatus)
	sess.GET("/pots", sectionPots)
	sess.POST("/finish", finishHand)

	r.GET("/ws/:code", watchSession)
	r.GET("/hand/:handCode", completedHand)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// RunRestServer blocks serving the capture API on the given port.
func RunRestServer(manager *session.Manager, port int) error {
	r := setupRouter(manager)
	return r.Run(fmt.Sprintf(":%d", port))
}

type newSessionPayload struct {
	SetupText string `json:"setupText"`

	HandNum     uint32             `json:"handNum"`
	Players     []engine.Player    `json:"players"`
	Blinds      engine.BlindConfig `json:"blinds"`
	DefaultUnit string             `json:"defaultUnit"`
}

func newSession(c *gin.Context) {
	var payload newSessionPayload
	err := c.BindJSON(&payload)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	var sess *session.Session
	if payload.SetupText != "" {
		sess, err = sessionManager.NewSessionFromSetup(payload.SetupText)
	} else {
		unit := engine.UnitUnspecified
		if payload.DefaultUnit != "" {
			unit, err = engine.ParseUnit(payload.DefaultUnit)
			if err != nil {
				abortWithError(c, http.StatusBadRequest, err)
				return
			}
		}
		sess, err = sessionManager.NewSession(payload.HandNum, payload.Players, payload.Blinds, unit)
	}
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	restLogger.Info().Str(logging.SessionCodeKey, sess.Code).Msg("New capture session")
	c.JSON(http.StatusOK, sess)
}

func sectionKeyFrom(stageStr string, levelStr string) (engine.SectionKey, error) {
	stage, err := engine.ParseStage(stageStr)
	if err != nil {
		return engine.SectionKey{}, err
	}
	level := engine.LevelBase
	if levelStr != "" {
		level, err = engine.ParseLevel(levelStr)
		if err != nil {
			return engine.SectionKey{}, err
		}
	}
	return engine.SectionKey{Stage: stage, Level: level}, nil
}

type actionPayload struct {
	Stage    string `json:"stage"`
	Level    string `json:"level"`
	PlayerID uint64 `json:"playerId"`
	Action   string `json:"action"`
	Amount   string `json:"amount"`
	Unit     string `json:"unit"`
}

func commitAction(c *gin.Context) {
	var payload actionPayload
	err := c.BindJSON(&payload)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	key, err := sectionKeyFrom(payload.Stage, payload.Level)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	action, err := engine.ParseAction(payload.Action)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	unit := engine.UnitUnspecified
	if payload.Unit != "" {
		unit, err = engine.ParseUnit(payload.Unit)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, err)
			return
		}
	}

	status, err := sessionManager.CommitAction(c.Param("code"), key, payload.PlayerID, engine.ActionRecord{
		Action: action,
		Amount: payload.Amount,
		Unit:   unit,
	})
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type boardPayload struct {
	Stage string   `json:"stage"`
	Cards []string `json:"cards"`
}

func setBoard(c *gin.Context) {
	var payload boardPayload
	err := c.BindJSON(&payload)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	stage, err := engine.ParseStage(payload.Stage)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	cards := make([]engine.Card, 0, len(payload.Cards))
	for _, raw := range payload.Cards {
		card, err := engine.ParseCard(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, err)
			return
		}
		cards = append(cards, card)
	}
	err = sessionManager.SetBoard(c.Param("code"), stage, cards)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type processPayload struct {
	Stage   string `json:"stage"`
	Level   string `json:"level"`
	Cascade bool   `json:"cascade"`
}

func processSection(c *gin.Context) {
	var payload processPayload
	err := c.BindJSON(&payload)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	key, err := sectionKeyFrom(payload.Stage, payload.Level)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	if payload.Cascade {
		result, err := sessionManager.ProcessCascade(c.Param("code"), key)
		if err != nil {
			abortWithError(c, http.StatusConflict, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}
	result, err := sessionManager.ProcessSection(c.Param("code"), key)
	if err != nil {
		abortWithError(c, http.StatusConflict, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func sectionStatus(c *gin.Context) {
	key, err := sectionKeyFrom(c.Query("stage"), c.Query("level"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	status, err := sessionManager.Status(c.Param("code"), key)
	if err != nil {
		abortWithError(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func sectionPots(c *gin.Context) {
	stage, err := engine.ParseStage(c.Query("stage"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	pots, err := sessionManager.Pots(c.Param("code"), stage)
	if err != nil {
		abortWithError(c, http.StatusConflict, err)
		return
	}
	c.JSON(http.StatusOK, pots)
}

func finishHand(c *gin.Context) {
	summary, err := sessionManager.FinishHand(c.Param("code"))
	if err != nil {
		abortWithError(c, http.StatusConflict, err)
		return
	}
	sessionLimiters.Remove(c.Param("code"))
	c.JSON(http.StatusOK, summary)
}

func completedHand(c *gin.Context) {
	summary, exists := sessionManager.CompletedHand(c.Param("handCode"))
	if !exists {
		abortWithError(c, http.StatusNotFound,
			fmt.Errorf("Hand %s is not found", c.Param("handCode")))
		return
	}
	c.JSON(http.StatusOK, summary)
}
