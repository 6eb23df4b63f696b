package main

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/carg563/Awhina-2-Testing-Portal/cmd/awhinad_backend/handlers"
	"github.com/carg563/Awhina-2-Testing-Portal/cmd/awhinad_backend/projects"
	apierr "github.com/carg563/Awhina-2-Testing-Portal/pkg/api/types/errors"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/echoutil"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
)

func BuildServer(store projects.Store, validate handlers.TokenValidator, loglevel string) *echo.Echo {

	e := echo.New()

	echoutil.SetLevel(e, loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}

	e.Pre(middleware.AddTrailingSlash())
	e.Use(echoutil.LogHandlerFunc)

	metrics := echoutil.NewMetrics("awhinad_backend")
	e.Use(metrics.Middleware())
	metrics.Mount(e)

	e.POST("/api/deployments/id/", handlers.NewDeploymentIDHandler(store, validate))
	e.POST("/api/deployments/", handlers.CreateProjectHandler(store, validate))
	e.POST("/api/deployments/config/", handlers.WriteConfigHandler(store, validate))
	e.PUT("/api/deployments/config/", handlers.UpdateConfigHandler(store, validate))
	e.DELETE("/api/deployments/", handlers.DeleteProjectHandler(store, validate))

	return e
}

// operatorValidator accepts a token when the portal resolves it to an
// account holding at least one of the admin groups.
func operatorValidator(
	gateway func(gis.Credential) gis.Gateway, adminGroupIDs []string,
) handlers.TokenValidator {
	return func(ctx context.Context, token string) error {
		groups, err := gateway(gis.Credential{Token: token}).Community().Memberships(ctx, adminGroupIDs)
		if err != nil {
			if gis.IsUnauthorized(err) {
				return apierr.Unauthorized("your portal token is expired or invalid", err)
			}
			return apierr.InternalServerError(err)
		}
		if len(groups) == 0 {
			return apierr.Unauthorized("your account is not in an operator group", nil)
		}
		return nil
	}
}
