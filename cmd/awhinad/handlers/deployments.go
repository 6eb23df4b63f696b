package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	apideployments "github.com/carg563/Awhina-2-Testing-Portal/pkg/api/types/deployments"
	apierr "github.com/carg563/Awhina-2-Testing-Portal/pkg/api/types/errors"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/orchestrate"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/record"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/teardown"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/echoutil"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"
)

// GatewayFactory binds a platform gateway to one caller credential.
type GatewayFactory func(gis.Credential) gis.Gateway

func ListDeploymentsHandler(records record.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		recs, err := records.List(ctx)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, slices.Map(recs, apideployments.ComposeSummary))
	}
}

func GetDeploymentHandler(records record.Interface, uidParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		rec, err := records.Get(ctx, c.Param(uidParam))
		if errors.Is(err, record.ErrNotFound) {
			return apierr.NotFound()
		}
		if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, apideployments.ComposeDetail(rec))
	}
}

// CreateDeploymentHandler accepts the deployment and answers 202 as soon
// as the record exists; provisioning continues in the background and the
// client polls the record for progress.
func CreateDeploymentHandler(
	orc *orchestrate.Orchestrator, gateway GatewayFactory, register domain.Register,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		cred := echoutil.Credential(c)

		payload := apideployments.CreateRequest{}
		if err := c.Bind(&payload); err != nil {
			return apierr.BadRequest("malformed request body", err)
		}
		req, err := parseCreateRequest(payload, register)
		if err != nil {
			return apierr.BadRequest(err.Error(), err)
		}
		if err := req.Validate(); err != nil {
			return apierr.BadRequest(err.Error(), err)
		}

		rec, err := orc.Prepare(ctx, cred, req)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		logger := c.Echo().Logger
		go func() {
			if _, err := orc.Run(context.Background(), gateway(cred), cred, rec); err != nil {
				logger.Errorf("deployment %s did not complete: %s", rec.DeploymentID, err)
			}
		}()

		return c.JSON(http.StatusAccepted, apideployments.ComposeDetail(rec))
	}
}

func ResumeDeploymentHandler(
	orc *orchestrate.Orchestrator, records record.Interface, gateway GatewayFactory, uidParam string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		cred := echoutil.Credential(c)
		uid := c.Param(uidParam)

		rec, err := records.Get(ctx, uid)
		if errors.Is(err, record.ErrNotFound) {
			return apierr.NotFound()
		}
		if err != nil {
			return apierr.InternalServerError(err)
		}
		if rec.Status == domain.Created {
			return apierr.Conflict(fmt.Sprintf("deployment %s is already created", uid))
		}

		logger := c.Echo().Logger
		go func() {
			if _, err := orc.Resume(context.Background(), gateway(cred), cred, uid); err != nil {
				logger.Errorf("deployment %s did not complete: %s", uid, err)
			}
		}()

		return c.JSON(http.StatusAccepted, apideployments.ComposeDetail(rec))
	}
}

func ExtendDeploymentHandler(
	orc *orchestrate.Orchestrator, records record.Interface, gateway GatewayFactory, uidParam string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		cred := echoutil.Credential(c)
		uid := c.Param(uidParam)

		payload := apideployments.ExtendRequest{}
		if err := c.Bind(&payload); err != nil {
			return apierr.BadRequest("malformed request body", err)
		}
		needs, err := parseNeeds(payload.WelfareNeeds)
		if err != nil {
			return apierr.BadRequest(err.Error(), err)
		}
		if len(needs) == 0 {
			return apierr.BadRequest("at least one welfare need is required", nil)
		}

		rec, err := records.Get(ctx, uid)
		if errors.Is(err, record.ErrNotFound) {
			return apierr.NotFound()
		}
		if err != nil {
			return apierr.InternalServerError(err)
		}
		if rec.Status != domain.Created {
			return apierr.Conflict(fmt.Sprintf(
				"deployment %s is %s; only created deployments can be extended", uid, rec.Status,
			))
		}
		added := slices.Filter(needs, func(n domain.WelfareNeed) bool {
			return !slices.Contains(rec.WelfareNeeds, n)
		})
		if len(added) == 0 {
			return apierr.Conflict(fmt.Sprintf(
				"deployment %s already covers the requested welfare needs", uid,
			))
		}

		logger := c.Echo().Logger
		go func() {
			if _, err := orc.AddWelfareNeeds(context.Background(), gateway(cred), cred, uid, added); err != nil {
				logger.Errorf("deployment %s did not complete: %s", uid, err)
			}
		}()

		return c.JSON(http.StatusAccepted, apideployments.ComposeDetail(rec))
	}
}

func DeleteDeploymentHandler(
	runner *teardown.Runner, gateway GatewayFactory, uidParam string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		cred := echoutil.Credential(c)
		uid := c.Param(uidParam)

		err := runner.Delete(ctx, gateway(cred), cred, uid)
		if errors.Is(err, record.ErrNotFound) {
			return apierr.NotFound()
		}
		if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func parseCreateRequest(
	payload apideployments.CreateRequest, register domain.Register,
) (orchestrate.CreateRequest, error) {
	grouping, err := domain.AsGroupingMode(payload.Grouping)
	if err != nil {
		return orchestrate.CreateRequest{}, err
	}
	needs, err := parseNeeds(payload.WelfareNeeds)
	if err != nil {
		return orchestrate.CreateRequest{}, err
	}

	groups := make([]domain.CDEMGroup, 0, len(payload.CDEMGroups))
	for _, name := range payload.CDEMGroups {
		g, ok := register.ByName(name)
		if !ok {
			return orchestrate.CreateRequest{}, fmt.Errorf("'%s' is not a known CDEM group", name)
		}
		groups = append(groups, g)
	}

	return orchestrate.CreateRequest{
		Project:      payload.Project,
		CDEMGroups:   groups,
		Grouping:     grouping,
		WelfareNeeds: needs,
		SurveyFormID: payload.SurveyFormID,
	}, nil
}

func parseNeeds(names []string) ([]domain.WelfareNeed, error) {
	needs := make([]domain.WelfareNeed, 0, len(names))
	for _, name := range names {
		n, err := domain.AsWelfareNeed(name)
		if err != nil {
			return nil, err
		}
		needs = append(needs, n)
	}
	return needs, nil
}
