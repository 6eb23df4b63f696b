package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carg563/Awhina-2-Testing-Portal/cmd/awhinad_backend/projects"
	apierr "github.com/carg563/Awhina-2-Testing-Portal/pkg/api/types/errors"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
)

// TokenValidator checks that a portal token belongs to an operator.
// It returns an error wrapping gis.ErrUnauthorized for a bad token.
type TokenValidator func(ctx context.Context, token string) error

type request struct {
	Token        string               `json:"token"`
	DeploymentID string               `json:"deploymentID"`
	Config       *domain.PortalConfig `json:"config"`
}

func bind(c echo.Context, validate TokenValidator) (request, error) {
	req := request{}
	if err := c.Bind(&req); err != nil {
		return request{}, apierr.BadRequest("malformed request body", err)
	}
	if req.Token == "" {
		return request{}, apierr.Unauthorized("send your portal token in the request body", nil)
	}
	if err := validate(c.Request().Context(), req.Token); err != nil {
		return request{}, err
	}
	return req, nil
}

func NewDeploymentIDHandler(store projects.Store, validate TokenValidator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := bind(c, validate); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, struct {
			DeploymentID string `json:"deploymentID"`
		}{DeploymentID: store.NewID()})
	}
}

func CreateProjectHandler(store projects.Store, validate TokenValidator) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := bind(c, validate)
		if err != nil {
			return err
		}
		if req.DeploymentID == "" {
			return apierr.BadRequest("deploymentID is required", nil)
		}
		if err := store.Create(req.DeploymentID); errors.Is(err, projects.ErrAlreadyExists) {
			return apierr.Conflict(err.Error())
		} else if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.NoContent(http.StatusCreated)
	}
}

func WriteConfigHandler(store projects.Store, validate TokenValidator) echo.HandlerFunc {
	return configHandler(store.WriteConfig, validate)
}

func UpdateConfigHandler(store projects.Store, validate TokenValidator) echo.HandlerFunc {
	return configHandler(store.UpdateConfig, validate)
}

func configHandler(
	write func(deploymentID string, cfg domain.PortalConfig) error,
	validate TokenValidator,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := bind(c, validate)
		if err != nil {
			return err
		}
		if req.DeploymentID == "" || req.Config == nil {
			return apierr.BadRequest("deploymentID and config are required", nil)
		}
		err = write(req.DeploymentID, *req.Config)
		switch {
		case errors.Is(err, projects.ErrNotFound):
			return apierr.NotFound()
		case err != nil:
			return apierr.InternalServerError(err)
		}
		return c.NoContent(http.StatusOK)
	}
}

func DeleteProjectHandler(store projects.Store, validate TokenValidator) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := bind(c, validate)
		if err != nil {
			return err
		}
		if req.DeploymentID == "" {
			return apierr.BadRequest("deploymentID is required", nil)
		}
		if err := store.Delete(req.DeploymentID); errors.Is(err, projects.ErrNotFound) {
			return apierr.NotFound()
		} else if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
