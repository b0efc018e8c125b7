package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/victornm/jeopardy/internal/domain"
	"github.com/victornm/jeopardy/internal/errors"
	"github.com/victornm/jeopardy/internal/event"
	"github.com/victornm/jeopardy/internal/leaderboard"
	"github.com/victornm/jeopardy/internal/session"
)

type Config struct {
	Router       gin.IRouter
	EventBus     *event.Bus
	Session      *session.Service
	Leaderboard  *leaderboard.Service
	Redis        Redis
	PubsubPrefix string
	// PublicURL is encoded in the QR code. When empty it is derived from the request.
	PublicURL string
}

type Redis interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type API struct {
	ss *session.Service
	ls *leaderboard.Service

	hub *hub

	redis     Redis
	prefix    string
	publicURL string
}

func New(c Config) *API {
	a := &API{
		ss:        c.Session,
		ls:        c.Leaderboard,
		hub:       newHub(),
		redis:     c.Redis,
		prefix:    c.PubsubPrefix,
		publicURL: c.PublicURL,
	}

	r := c.Router
	r.Use(requestLogger())

	// HTTP APIs
	g := r.Group("/api")
	g.GET("/state", a.GetState)
	g.GET("/leaderboard", a.GetLeaderboard)

	g.POST("/game/start", a.intent(a.ss.StartGame))
	g.POST("/game/edit", a.intent(a.ss.EnterEditMode))
	g.POST("/game/finish-editing", a.intent(a.ss.FinishEditing))
	g.POST("/game/menu", a.intent(a.ss.ReturnToMenu))

	g.POST("/question/select", a.SelectQuestion)
	g.POST("/question/reveal", a.intent(a.ss.RevealQuestion))
	g.POST("/question/close", a.intent(a.ss.CloseQuestion))
	g.POST("/question/answering-player", a.SelectAnsweringPlayer)
	g.POST("/question/answer", a.RecordAnswer)
	g.POST("/question/wagerer", a.SelectWagerer)
	g.POST("/question/wager", a.SubmitWager)
	g.POST("/question/edit/cancel", a.intent(a.ss.CancelQuestionEdit))

	g.PUT("/categories/:ci/title", a.EditCategoryTitle)
	g.PUT("/categories/:ci/questions/:qi", a.EditQuestionContent)
	g.PUT("/players/:id/name", a.RenamePlayer)
	g.GET("/players/:id/max-wager", a.GetMaxWager)

	g.GET("/export", a.Export)
	g.POST("/import", a.Import)

	r.GET("/ws", a.ServeWS)
	r.GET("/qr.png", a.QRCode)

	// Register event handlers
	c.EventBus.Subscribe(domain.EventNameStateChanged, func(ctx context.Context, e event.Event) error {
		a.hub.broadcast(ctx, e.(domain.EventStateChanged).State)
		return a.PublishStateChanged(ctx, e.(domain.EventStateChanged))
	})

	c.EventBus.Subscribe(domain.EventNameLeaderboardUpdated, func(ctx context.Context, e event.Event) error {
		return a.PublishLeaderboardUpdated(ctx, e.(domain.EventLeaderboardUpdated))
	})

	return a
}

// Close disconnects every WebSocket client.
func (a *API) Close() {
	a.hub.close()
}

func (a *API) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, a.ss.State(c.Request.Context()))
}

func (a *API) GetLeaderboard(c *gin.Context) {
	l, err := a.ls.GetLeaderboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, l)
}

// intent adapts a session operation without arguments to a handler answering with the new state.
func (a *API) intent(op func(ctx context.Context) domain.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, op(c.Request.Context()))
	}
}

type selectQuestionBody struct {
	CategoryIndex *int `json:"categoryIndex" binding:"required"`
	QuestionIndex *int `json:"questionIndex" binding:"required"`
}

func (a *API) SelectQuestion(c *gin.Context) {
	var body selectQuestionBody
	if !bind(c, &body) {
		return
	}

	c.JSON(http.StatusOK, a.ss.SelectQuestion(c.Request.Context(), session.SelectQuestionRequest{
		CategoryIndex: *body.CategoryIndex,
		QuestionIndex: *body.QuestionIndex,
	}))
}

type playerBody struct {
	PlayerID int `json:"playerId" binding:"required"`
}

func (a *API) SelectAnsweringPlayer(c *gin.Context) {
	var body playerBody
	if !bind(c, &body) {
		return
	}

	c.JSON(http.StatusOK, a.ss.SelectAnsweringPlayer(c.Request.Context(), session.SelectPlayerRequest{PlayerID: body.PlayerID}))
}

func (a *API) SelectWagerer(c *gin.Context) {
	var body playerBody
	if !bind(c, &body) {
		return
	}

	c.JSON(http.StatusOK, a.ss.SelectWagerer(c.Request.Context(), session.SelectPlayerRequest{PlayerID: body.PlayerID}))
}

type wagerBody struct {
	Amount int `json:"amount"`
}

func (a *API) SubmitWager(c *gin.Context) {
	var body wagerBody
	if !bind(c, &body) {
		return
	}

	c.JSON(http.StatusOK, a.ss.SubmitWager(c.Request.Context(), session.SubmitWagerRequest{Amount: body.Amount}))
}

type answerBody struct {
	Correct *bool `json:"correct" binding:"required"`
}

func (a *API) RecordAnswer(c *gin.Context) {
	var body answerBody
	if !bind(c, &body) {
		return
	}

	c.JSON(http.StatusOK, a.ss.RecordAnswer(c.Request.Context(), session.RecordAnswerRequest{Correct: *body.Correct}))
}

type titleBody struct {
	Title string `json:"title"`
}

func (a *API) EditCategoryTitle(c *gin.Context) {
	ci, ok := intParam(c, "ci")
	if !ok {
		return
	}

	var body titleBody
	if !bind(c, &body) {
		return
	}

	c.JSON(http.StatusOK, a.ss.EditCategoryTitle(c.Request.Context(), session.EditCategoryTitleRequest{
		CategoryIndex: ci,
		Title:         body.Title,
	}))
}

type questionContentBody struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (a *API) EditQuestionContent(c *gin.Context) {
	ci, ok := intParam(c, "ci")
	if !ok {
		return
	}

	qi, ok := intParam(c, "qi")
	if !ok {
		return
	}

	var body questionContentBody
	if !bind(c, &body) {
		return
	}

	c.JSON(http.StatusOK, a.ss.EditQuestionContent(c.Request.Context(), session.EditQuestionContentRequest{
		CategoryIndex: ci,
		QuestionIndex: qi,
		Question:      body.Question,
		Answer:        body.Answer,
	}))
}

type nameBody struct {
	Name string `json:"name"`
}

func (a *API) RenamePlayer(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	var body nameBody
	if !bind(c, &body) {
		return
	}

	c.JSON(http.StatusOK, a.ss.RenamePlayer(c.Request.Context(), session.RenamePlayerRequest{PlayerID: id, Name: body.Name}))
}

func (a *API) GetMaxWager(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"playerId": id,
		"maxWager": a.ss.MaxWager(c.Request.Context(), session.SelectPlayerRequest{PlayerID: id}),
	})
}

func bind(c *gin.Context, body any) bool {
	if err := c.ShouldBindJSON(body); err != nil {
		writeError(c, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("invalid request body: %v", err),
			errors.WithCause(err),
		))
		return false
	}

	return true
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		writeError(c, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("invalid %s: %q", name, c.Param(name)),
		))
		return 0, false
	}

	return v, true
}

func writeError(c *gin.Context, err error) {
	e := errors.Convert(err)
	c.AbortWithStatusJSON(e.HTTPStatusCode(), e)
}
