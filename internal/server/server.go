package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	accountdomain "github.com/voltmesh/gridadmin/internal/account/domain"
	alertdomain "github.com/voltmesh/gridadmin/internal/alert/domain"
	"github.com/voltmesh/gridadmin/internal/auth"
	"github.com/voltmesh/gridadmin/internal/billingstats"
	"github.com/voltmesh/gridadmin/internal/config"
	consumerdomain "github.com/voltmesh/gridadmin/internal/consumer/domain"
	meterdomain "github.com/voltmesh/gridadmin/internal/meter/domain"
	notificationdomain "github.com/voltmesh/gridadmin/internal/notification/domain"
	obslogger "github.com/voltmesh/gridadmin/internal/observability/logger"
	"github.com/voltmesh/gridadmin/internal/observability/metrics"
	roledomain "github.com/voltmesh/gridadmin/internal/role/domain"
	ticketdomain "github.com/voltmesh/gridadmin/internal/ticket/domain"
	"github.com/voltmesh/gridadmin/internal/ws"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config  config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics

	Verifier *auth.Verifier
	Hub      *ws.Hub

	ConsumerSvc consumerdomain.Service
	MeterSvc    meterdomain.Service
	AccountSvc  accountdomain.Service
	AlertSvc    alertdomain.Service
	RoleSvc     roledomain.Service
	TicketSvc   ticketdomain.Service
	Dispatcher  notificationdomain.Dispatcher
	StatsSvc    billingstats.Service
}

type Server struct {
	cfg     config.Config
	log     *zap.Logger
	metrics *metrics.Metrics

	verifier *auth.Verifier
	hub      *ws.Hub

	consumerSvc consumerdomain.Service
	meterSvc    meterdomain.Service
	accountSvc  accountdomain.Service
	alertSvc    alertdomain.Service
	roleSvc     roledomain.Service
	ticketSvc   ticketdomain.Service
	dispatcher  notificationdomain.Dispatcher
	statsSvc    billingstats.Service

	engine *gin.Engine
}

func New(p Params) *Server {
	s := &Server{
		cfg:         p.Config,
		log:         p.Log.Named("server"),
		metrics:     p.Metrics,
		verifier:    p.Verifier,
		hub:         p.Hub,
		consumerSvc: p.ConsumerSvc,
		meterSvc:    p.MeterSvc,
		accountSvc:  p.AccountSvc,
		alertSvc:    p.AlertSvc,
		roleSvc:     p.RoleSvc,
		ticketSvc:   p.TicketSvc,
		dispatcher:  p.Dispatcher,
		statsSvc:    p.StatsSvc,
	}
	s.engine = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	if s.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(obslogger.GinMiddleware(s.log))
	engine.Use(MetricsMiddleware(s.metrics))
	engine.Use(CORSMiddleware(s.cfg.CORSAllowOrigins))
	engine.Use(ErrorHandlingMiddleware())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/ws", func(c *gin.Context) {
		s.hub.ServeWS(c.Writer, c.Request)
	})

	api := engine.Group("/api/v1")
	api.Use(s.AuthRequired())

	consumers := api.Group("/consumers")
	{
		consumers.POST("", s.createConsumer)
		consumers.GET("", s.listConsumers)
		consumers.GET("/:id", s.getConsumer)
		consumers.PUT("/:id", s.updateConsumer)
		consumers.DELETE("/:id", s.deleteConsumer)
	}

	meters := api.Group("/meters")
	{
		meters.POST("", s.createMeter)
		meters.GET("", s.listMeters)
		meters.GET("/:id", s.getMeter)
		meters.PUT("/:id", s.updateMeter)
		meters.DELETE("/:id", s.deleteMeter)
		meters.POST("/:id/readings", s.recordMeterReading)
	}

	accounts := api.Group("/accounts")
	{
		accounts.POST("", s.createAccount)
		accounts.GET("", s.listAccounts)
		accounts.GET("/:id", s.getAccount)
		accounts.POST("/:id/recharge", s.rechargeAccount)
		accounts.POST("/:id/consumption", s.recordConsumption)
		accounts.POST("/:id/block", s.blockAccount)
		accounts.POST("/:id/unblock", s.unblockAccount)
		accounts.GET("/:id/recharges", s.listAccountRecharges)
		accounts.GET("/:id/transactions", s.listAccountTransactions)
	}

	api.GET("/stats", s.getStats)

	alerts := api.Group("/alerts")
	{
		alerts.GET("", s.listAlerts)
		alerts.POST("/:id/resolve", s.resolveAlert)
	}

	roles := api.Group("/roles")
	{
		roles.POST("", s.createRole)
		roles.GET("", s.listRoles)
		roles.GET("/:id", s.getRole)
		roles.PUT("/:id", s.updateRole)
		roles.DELETE("/:id", s.deleteRole)
		roles.PUT("/:id/permissions", s.replaceRolePermissions)
	}
	api.GET("/permissions", s.listPermissions)

	tickets := api.Group("/tickets")
	{
		tickets.POST("", s.createTicket)
		tickets.GET("", s.listTickets)
		tickets.GET("/:id", s.getTicket)
		tickets.PUT("/:id", s.updateTicket)
		tickets.DELETE("/:id", s.deleteTicket)
		tickets.PATCH("/:id/status", s.updateTicketStatus)
		tickets.POST("/:id/escalate", s.escalateTicket)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", s.listNotifications)
		notifications.GET("/:id", s.getNotification)
		notifications.POST("/announce", RequireRole("admin"), s.announce)
	}

	return engine
}

// Module provides the HTTP server and binds it to the fx lifecycle.
var Module = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(Run),
)

func Run(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("http server starting", zap.String("addr", s.cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
