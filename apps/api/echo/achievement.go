package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vitrine/core"
	"github.com/trezcool/vitrine/core/achievement"
	"github.com/trezcool/vitrine/core/user"
)

type achievementApi struct {
	svc      achievement.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerAchievementAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	optJWT echo.MiddlewareFunc,
	svc achievement.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := achievementApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	ag := g.Group("/achievements")

	// browse endpoints; a token (incl. guest tokens) widens visibility but is
	// not required.
	ag.GET("", api.query, optJWT)
	ag.GET("/:id", api.retrieve, optJWT)

	// authed endpoints
	ag.POST("", api.create, jwt)
	ag.POST("/:id/submit", api.submit, jwt)
	ag.POST("/:id/resubmit", api.resubmit, jwt)
	ag.PUT("/:id", api.update, jwt)
	ag.DELETE("/:id", api.destroy, jwt)
	ag.PATCH("/:id/recommendation", api.recommend, jwt)
	ag.DELETE("/:id/recommendation", api.clearRecommendation, jwt)

	// review endpoints
	ag.PATCH("/:id/status", api.review, jwt, reviewerMiddleware())
	ag.GET("/:id/decisions", api.decisions, jwt, reviewerMiddleware())
}

// Handlers

func (api *achievementApi) query(ctx echo.Context) error {
	filter := new(achievement.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, PaginatedResponse{Results: []achievement.Achievement{}})
	}
	filter.Clean()
	page := new(Pagination)
	page.Bind(ctx)

	actor := contextActor(ctx, api.usrSvc)
	achs, err := api.svc.Query(ctx.Request().Context(), actor, filter)
	if err != nil {
		return errors.Wrap(err, "querying achievements")
	}

	lo, hi := page.Bounds(len(achs))
	results := achs[lo:hi]
	if results == nil {
		results = []achievement.Achievement{}
	}
	return ctx.JSON(http.StatusOK, PaginatedResponse{
		Count:    len(achs),
		Page:     page.Page,
		PageSize: page.PageSize,
		Results:  results,
	})
}

func (api *achievementApi) retrieve(ctx echo.Context) error {
	actor := contextActor(ctx, api.usrSvc)
	ach, err := api.svc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting achievement")
	}
	return ctx.JSON(http.StatusOK, ach)
}

func (api *achievementApi) create(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data achievement.NewAchievement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAchievement")
	}

	// ?draft=true stashes an incomplete submission; only the title is checked.
	if ctx.QueryParam("draft") == "true" {
		ach, err := api.svc.SaveDraft(ctx.Request().Context(), actor, data)
		if err != nil {
			return errors.Wrap(err, "saving draft")
		}
		return ctx.JSON(http.StatusCreated, ach)
	}

	if err := data.Validate(api.validate); err != nil {
		return err
	}
	ach, err := api.svc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating achievement")
	}
	return ctx.JSON(http.StatusCreated, ach)
}

func (api *achievementApi) submit(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	ach, err := api.svc.Submit(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "submitting achievement")
	}
	return ctx.JSON(http.StatusOK, ach)
}

func (api *achievementApi) resubmit(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data achievement.NewAchievement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAchievement")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ach, err := api.svc.Resubmit(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "resubmitting achievement")
	}
	return ctx.JSON(http.StatusCreated, ach)
}

func (api *achievementApi) update(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data achievement.UpdateAchievement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAchievement")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ach, err := api.svc.Update(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating achievement")
	}
	return ctx.JSON(http.StatusOK, ach)
}

func (api *achievementApi) destroy(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Delete(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting achievement")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *achievementApi) review(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data ReviewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewRequest")
	}
	if err := data.Validate(ctx, api.validate); err != nil {
		return err
	}

	var ach achievement.Achievement
	switch data.Action {
	case reviewActionApprove:
		ach, err = api.svc.Approve(ctx.Request().Context(), actor, ctx.Param("id"), data.Version, data.RequestID, data.Override)
	case reviewActionReject:
		ach, err = api.svc.Reject(ctx.Request().Context(), actor, ctx.Param("id"), data.Version, data.Reason, data.RequestID, data.Override)
	}
	if err != nil {
		return errors.Wrapf(err, "applying %q decision", data.Action)
	}
	return ctx.JSON(http.StatusOK, ach)
}

func (api *achievementApi) recommend(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data RecommendRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecommendRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	ach, err := api.svc.Recommend(ctx.Request().Context(), actor, ctx.Param("id"), data.Version, achievement.Recommendation{
		Level:   data.Level,
		Comment: core.CleanString(data.Comment),
	})
	if err != nil {
		return errors.Wrap(err, "recommending achievement")
	}
	return ctx.JSON(http.StatusOK, ach)
}

func (api *achievementApi) clearRecommendation(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data VersionedRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VersionedRequest")
	}

	ach, err := api.svc.ClearRecommendation(ctx.Request().Context(), actor, ctx.Param("id"), data.Version)
	if err != nil {
		return errors.Wrap(err, "clearing recommendation")
	}
	return ctx.JSON(http.StatusOK, ach)
}

func (api *achievementApi) decisions(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	decs, err := api.svc.Decisions(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying review decisions")
	}
	if decs == nil {
		decs = []achievement.ReviewDecision{}
	}
	return ctx.JSON(http.StatusOK, decs)
}

const (
	reviewActionApprove = "approve"
	reviewActionReject  = "reject"

	requestIDHeader = "X-Request-ID"
)

type (
	// ReviewRequest carries an approve/reject decision. RequestID deduplicates
	// retried submissions; when the client sends none, one is generated so each
	// call stands alone.
	ReviewRequest struct {
		Action    string `json:"action" validate:"required,oneof=approve reject"`
		Version   int    `json:"version" validate:"required"`
		Reason    string `json:"reason" validate:"omitempty,rejectreason"`
		Override  bool   `json:"override"`
		RequestID string `json:"request_id"`
	}

	RecommendRequest struct {
		Version int    `json:"version" validate:"required"`
		Level   int    `json:"level" validate:"required,min=1,max=3"`
		Comment string `json:"comment" validate:"omitempty,max=500"`
	}

	VersionedRequest struct {
		Version int `json:"version"`
	}
)

func (rr *ReviewRequest) Validate(ctx echo.Context, validate *validator.Validate) error {
	rr.Reason = core.CleanString(rr.Reason)
	rr.RequestID = core.CleanString(rr.RequestID)
	if rr.RequestID == "" {
		rr.RequestID = core.CleanString(ctx.Request().Header.Get(requestIDHeader))
	}
	if rr.RequestID == "" {
		rr.RequestID = uuid.NewString()
	}
	return validate.Struct(rr)
}
