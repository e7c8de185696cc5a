package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vitrine/core"
	"github.com/trezcool/vitrine/core/requirement"
	"github.com/trezcool/vitrine/core/user"
)

type requirementApi struct {
	svc      requirement.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerRequirementAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc requirement.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := requirementApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	// members only; the board carries contact details
	rg := g.Group("/requirements", jwt)
	rg.GET("", api.query)
	rg.POST("", api.create)
	rg.GET("/:id", api.retrieve)
	rg.POST("/:id/apply", api.apply)
	rg.PATCH("/:id/status", api.setStatus)
	rg.DELETE("/:id", api.destroy)
}

func (api *requirementApi) query(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := new(requirement.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []requirement.Requirement{})
	}

	reqs, err := api.svc.Query(ctx.Request().Context(), actor, filter)
	if err != nil {
		return errors.Wrap(err, "querying requirements")
	}
	if reqs == nil {
		reqs = []requirement.Requirement{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *requirementApi) create(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data requirement.NewRequirement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequirement")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "publishing requirement")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *requirementApi) retrieve(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	r, err := api.svc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting requirement")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *requirementApi) apply(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data ApplyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ApplyRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Apply(ctx.Request().Context(), actor, ctx.Param("id"), data.Message)
	if err != nil {
		return errors.Wrap(err, "applying to requirement")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *requirementApi) setStatus(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data RequirementStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RequirementStatusRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.SetStatus(ctx.Request().Context(), actor, ctx.Param("id"), requirement.Status(data.Status))
	if err != nil {
		return errors.Wrap(err, "setting requirement status")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *requirementApi) destroy(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Delete(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting requirement")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	ApplyRequest struct {
		Message string `json:"message" validate:"omitempty,max=500"`
	}

	RequirementStatusRequest struct {
		Status string `json:"status" validate:"required,reqstatus"`
	}
)

func (ar *ApplyRequest) Validate(validate *validator.Validate) error {
	ar.Message = core.CleanString(ar.Message)
	return validate.Struct(ar)
}

func (rs *RequirementStatusRequest) Validate(validate *validator.Validate) error {
	rs.Status = core.CleanString(rs.Status, true /* lower */)
	return validate.Struct(rs)
}
