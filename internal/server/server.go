// Package server wires the HTTP surface: routes, middleware and error
// mapping over the domain services.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lancekit/lancekit/internal/auth"
	authdomain "github.com/lancekit/lancekit/internal/auth/domain"
	"github.com/lancekit/lancekit/internal/auth/token"
	"github.com/lancekit/lancekit/internal/cache"
	"github.com/lancekit/lancekit/internal/client"
	clientdomain "github.com/lancekit/lancekit/internal/client/domain"
	"github.com/lancekit/lancekit/internal/config"
	"github.com/lancekit/lancekit/internal/invoice"
	invoicedomain "github.com/lancekit/lancekit/internal/invoice/domain"
	"github.com/lancekit/lancekit/internal/notification"
	notificationdomain "github.com/lancekit/lancekit/internal/notification/domain"
	"github.com/lancekit/lancekit/internal/onboarding"
	onboardingdomain "github.com/lancekit/lancekit/internal/onboarding/domain"
	"github.com/lancekit/lancekit/internal/payment"
	paymentdomain "github.com/lancekit/lancekit/internal/payment/domain"
	"github.com/lancekit/lancekit/internal/project"
	projectdomain "github.com/lancekit/lancekit/internal/project/domain"
	"github.com/lancekit/lancekit/internal/providers/pdf"
	"github.com/lancekit/lancekit/internal/scheduler"
)

var Module = fx.Module("http.server",
	cache.Module,
	auth.Module,
	client.Module,
	project.Module,
	invoice.Module,
	payment.Module,
	notification.Module,
	onboarding.Module,
	pdf.Module,
	scheduler.Module,
	fx.Provide(NewHTTPMetrics),
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log.Named("http")))
	r.Use(MetricsMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	issuer          *token.Issuer
	authSvc         authdomain.Service
	clientSvc       clientdomain.Service
	projectSvc      projectdomain.Service
	invoiceSvc      invoicedomain.Service
	paymentSvc      paymentdomain.Service
	notificationSvc notificationdomain.Service
	onboardingSvc   onboardingdomain.Service
	pdfProvider     pdf.Provider
	users           authdomain.Repository
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	Issuer          *token.Issuer
	AuthSvc         authdomain.Service
	ClientSvc       clientdomain.Service
	ProjectSvc      projectdomain.Service
	InvoiceSvc      invoicedomain.Service
	PaymentSvc      paymentdomain.Service
	NotificationSvc notificationdomain.Service
	OnboardingSvc   onboardingdomain.Service
	PDFProvider     pdf.Provider
	Users           authdomain.Repository
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		issuer:          p.Issuer,
		authSvc:         p.AuthSvc,
		clientSvc:       p.ClientSvc,
		projectSvc:      p.ProjectSvc,
		invoiceSvc:      p.InvoiceSvc,
		paymentSvc:      p.PaymentSvc,
		notificationSvc: p.NotificationSvc,
		onboardingSvc:   p.OnboardingSvc,
		pdfProvider:     p.PDFProvider,
		users:           p.Users,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.Login)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.PATCH("/me", s.AuthRequired(), s.UpdateProfile)
}

func (s *Server) registerAPIRoutes() {
	// webhooks authenticate via signature, not bearer token
	s.engine.POST("/api/payments/webhooks/:provider", s.HandlePaymentWebhook)

	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Clients --------
	api.GET("/clients", s.ListClients)
	api.POST("/clients", s.CreateClient)
	api.GET("/clients/:id", s.GetClientByID)
	api.PATCH("/clients/:id", s.UpdateClient)
	api.POST("/clients/:id/archive", s.ArchiveClient)

	// -------- Projects --------
	api.GET("/projects", s.ListProjects)
	api.POST("/projects", s.CreateProject)
	api.GET("/projects/:id", s.GetProjectByID)
	api.PATCH("/projects/:id", s.UpdateProject)
	api.GET("/projects/:id/tasks", s.ListTasks)
	api.POST("/projects/:id/tasks", s.CreateTask)

	// -------- Tasks --------
	api.PATCH("/tasks/:id", s.UpdateTask)
	api.DELETE("/tasks/:id", s.DeleteTask)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.SubmitInvoice)
	api.GET("/invoices/next-number", s.NextInvoiceNumber)
	api.POST("/invoices/from-project", s.PopulateInvoiceFromProject)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.PUT("/invoices/:id", s.ResubmitInvoice)
	api.DELETE("/invoices/:id", s.DeleteInvoice)
	api.POST("/invoices/:id/send", s.MarkInvoiceSent)
	api.POST("/invoices/:id/pay", s.MarkInvoicePaid)
	api.POST("/invoices/:id/void", s.VoidInvoice)
	api.GET("/invoices/:id/pdf", s.RenderInvoicePDF)
	api.GET("/invoices/:id/payments", s.ListInvoicePayments)

	// -------- Notifications --------
	api.GET("/notifications", s.ListNotifications)
	api.GET("/notifications/unread-count", s.UnreadNotificationCount)
	api.POST("/notifications/read-all", s.MarkAllNotificationsRead)
	api.POST("/notifications/:id/read", s.MarkNotificationRead)

	// -------- Onboarding --------
	api.GET("/onboarding", s.GetOnboarding)
	api.POST("/onboarding/profile", s.CompleteOnboardingProfile)
	api.POST("/onboarding/billing", s.CompleteOnboardingBilling)
	api.POST("/onboarding/billing/skip", s.SkipOnboardingBilling)
}
