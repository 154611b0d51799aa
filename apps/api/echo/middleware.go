package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trezcool/academia/core/authz"
	"github.com/trezcool/academia/core/user"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "academia_http_requests_total",
		Help: "Number of HTTP requests by route and status code.",
	}, []string{"method", "path", "code"})
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "academia_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

func metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)

		code := ctx.Response().Status
		if err != nil {
			if herr, ok := errors.Cause(err).(*echo.HTTPError); ok {
				code = herr.Code
			}
		}
		path := ctx.Path()
		httpRequests.WithLabelValues(ctx.Request().Method, path, strconv.Itoa(code)).Inc()
		httpDuration.WithLabelValues(ctx.Request().Method, path).Observe(time.Since(start).Seconds())
		return err
	}
}

// staffMiddleware only lets staff users through.
func staffMiddleware(usrSvc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, usrSvc)
			if err != nil {
				return err
			}
			if !usr.IsStaff {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// capableOf checks that the user holds the capability in the academy named by the `Academy` header
// (or the academy_id path param). The academy is then available through getContextAcademy.
func capableOf(authzSvc authz.Service, capability string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			userID, err := claims.UserID()
			if err != nil {
				return errUnauthorized
			}

			academy := ctx.Request().Header.Get("Academy")
			if academy == "" {
				academy = ctx.Param("academy_id")
			}
			academyID, err := authzSvc.CheckCapability(ctx.Request().Context(), userID, academy, capability)
			if err != nil {
				return err
			}
			ctx.Set(contextAcademyKey, academyID)
			return next(ctx)
		}
	}
}
