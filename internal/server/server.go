package server

import (
	"context"
	"net/http"
	"time"

	"minecraft-store/internal/handler"
	"minecraft-store/internal/middleware"
	"minecraft-store/internal/service"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Services struct {
	Cart     service.CartService
	Basket   service.BasketService
	Packages service.PackageService
	Blog     service.BlogService
	Webhook  service.WebhookService
}

type Options struct {
	// CheckoutRateLimit is checkout attempts per second per session, zero disables the limiter.
	CheckoutRateLimit float64
	SecureCookies     bool
}

type Server struct {
	echo            *echo.Echo
	opts            Options
	cartHandler     *handler.CartHandler
	basketHandler   *handler.BasketHandler
	checkoutHandler *handler.CheckoutHandler
	packageHandler  *handler.PackageHandler
	blogHandler     *handler.BlogHandler
	webhookHandler  *handler.WebhookHandler
}

func NewServer(svcs Services, opts Options, log logrus.FieldLogger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(requestLogger(log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:            e,
		opts:            opts,
		cartHandler:     handler.NewCartHandler(svcs.Cart, svcs.Basket),
		basketHandler:   handler.NewBasketHandler(svcs.Basket),
		checkoutHandler: handler.NewCheckoutHandler(svcs.Basket),
		packageHandler:  handler.NewPackageHandler(svcs.Packages),
		blogHandler:     handler.NewBlogHandler(svcs.Blog),
		webhookHandler:  handler.NewWebhookHandler(svcs.Webhook),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.GET("/packages", s.packageHandler.ListPackages)
	api.GET("/blog", s.blogHandler.ListPosts)
	api.GET("/blog/:slug", s.blogHandler.GetPost)

	// -------- gateway callbacks --------
	api.POST("/tebex/webhook", s.webhookHandler.TebexWebhook)

	// -------- per-session --------
	session := api.Group("", middleware.SessionMiddleware(s.opts.SecureCookies))

	session.GET("/cart", s.cartHandler.GetCart)
	session.POST("/cart/items", s.cartHandler.AddItem)
	session.DELETE("/cart/items/:id", s.cartHandler.RemoveItem)
	session.DELETE("/cart", s.cartHandler.Clear)
	session.PUT("/cart/open", s.cartHandler.SetOpen)

	session.GET("/basket", s.basketHandler.GetBasket)
	session.POST("/basket/reset", s.basketHandler.Reset)
	session.POST("/basket/coupons", s.basketHandler.ApplyCoupon)

	session.GET("/checkout", s.checkoutHandler.State)
	session.GET("/checkout/history", s.checkoutHandler.History)
	if s.opts.CheckoutRateLimit > 0 {
		session.POST("/checkout", s.checkoutHandler.Checkout, checkoutLimiter(s.opts.CheckoutRateLimit))
	} else {
		session.POST("/checkout", s.checkoutHandler.Checkout)
	}
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func checkoutLimiter(perSecond float64) echo.MiddlewareFunc {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if id := middleware.SessionID(c); id != "" {
				return id, nil
			}
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many checkout attempts")
		},
	})
}

func requestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"remote_ip":  v.RemoteIP,
			})
			if v.RequestID != "" {
				entry = entry.WithField("request_id", v.RequestID)
			}
			if v.Error != nil {
				entry.WithError(v.Error).Error("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}
