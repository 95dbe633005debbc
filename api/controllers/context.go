package controllers

import (
	"context"

	"github.com/google/uuid"

	"github.com/merchlane/merchportal-backend/api/middleware"
	"github.com/merchlane/merchportal-backend/internal/grouporders"
	"github.com/merchlane/merchportal-backend/pkg/enums"
	pkgerrors "github.com/merchlane/merchportal-backend/pkg/errors"
)

// requireUserID extracts the authenticated user id from the request context.
func requireUserID(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	uid, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return uid, nil
}

// requireActor builds the acting principal for order and distribution
// handlers from the authenticated request context.
func requireActor(ctx context.Context) (grouporders.Actor, error) {
	uid, err := requireUserID(ctx)
	if err != nil {
		return grouporders.Actor{}, err
	}

	role, err := enums.ParseUserRole(middleware.RoleFromContext(ctx))
	if err != nil {
		return grouporders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid role claim")
	}

	actor := grouporders.Actor{UserID: uid, Role: role}
	if raw := middleware.DepartmentIDFromContext(ctx); raw != "" {
		deptID, err := uuid.Parse(raw)
		if err != nil {
			return grouporders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid department id")
		}
		actor.DepartmentID = &deptID
	}
	return actor, nil
}
