package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/commcall/internal/adapters/signal"
	"github.com/dkeye/commcall/internal/app"
	"github.com/dkeye/commcall/internal/config"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware pins a stable token to each browser so logs
// can correlate reconnects of the same client.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.Controller, calls *app.CallStore) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("CommCallSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").
			Str("client_token", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctl.HandleWS(ctx, c)
	})

	api.GET("/calls", func(c *gin.Context) {
		type callView struct {
			CallID       string `json:"callId"`
			AdminName    string `json:"adminName"`
			StartTime    string `json:"startTime"`
			WithAudio    bool   `json:"withAudio"`
			Participants int    `json:"participantCount"`
		}
		rooms := calls.ListActive()
		out := make([]callView, 0, len(rooms))
		for _, room := range rooms {
			call := room.Call()
			out = append(out, callView{
				CallID:       string(call.ID),
				AdminName:    call.AdminName,
				StartTime:    call.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
				WithAudio:    call.WithAudio,
				Participants: room.MemberCount(),
			})
		}
		c.JSON(200, gin.H{"calls": out})
	})

	return r
}
