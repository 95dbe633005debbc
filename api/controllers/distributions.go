package controllers

import (
	"net/http"
	"strings"

	"github.com/merchlane/merchportal-backend/api/responses"
	"github.com/merchlane/merchportal-backend/api/validators"
	distsvc "github.com/merchlane/merchportal-backend/internal/distributions"
	"github.com/merchlane/merchportal-backend/pkg/enums"
	pkgerrors "github.com/merchlane/merchportal-backend/pkg/errors"
	"github.com/merchlane/merchportal-backend/pkg/logger"
)

func distributionActor(r *http.Request) (distsvc.Actor, error) {
	actor, err := requireActor(r.Context())
	if err != nil {
		return distsvc.Actor{}, err
	}
	return distsvc.Actor{UserID: actor.UserID, Role: actor.Role}, nil
}

// DistributionListAll pages every distribution item for back office views.
func DistributionListAll(svc distsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "distribution service unavailable"))
			return
		}

		params := distsvc.ListParams{
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params.Limit = limit

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseDistributionStatus(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			params.Status = &status
		}

		items, err := svc.ListAll(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// DistributionListMine returns the items assigned to the caller.
func DistributionListMine(svc distsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "distribution service unavailable"))
			return
		}

		uid, err := requireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.ListForUser(ctx, uid)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string][]distsvc.ItemDTO{"items": items})
	}
}

// DistributionSchedule assigns a distributor and a delivery date.
func DistributionSchedule(svc distsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "distribution service unavailable"))
			return
		}

		actor, err := distributionActor(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body distsvc.ScheduleInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Schedule(ctx, actor, id, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// DistributionConfirm marks a scheduled item as handed over.
func DistributionConfirm(svc distsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "distribution service unavailable"))
			return
		}

		actor, err := distributionActor(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Confirm(ctx, actor, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// DistributionCancel drops an item that was never scheduled.
func DistributionCancel(svc distsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "distribution service unavailable"))
			return
		}

		actor, err := distributionActor(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Cancel(ctx, actor, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
