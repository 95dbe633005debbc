package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/merchlane/merchportal-backend/api/responses"
	"github.com/merchlane/merchportal-backend/pkg/db/models"
	pkgerrors "github.com/merchlane/merchportal-backend/pkg/errors"
	"github.com/merchlane/merchportal-backend/pkg/logger"
)

type departmentLister interface {
	List(ctx context.Context) ([]models.Department, error)
}

type departmentResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DepartmentList returns every department, ordered by name.
func DepartmentList(repo departmentLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "department repository unavailable"))
			return
		}

		depts, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list departments"))
			return
		}

		out := make([]departmentResponse, 0, len(depts))
		for _, dept := range depts {
			out = append(out, departmentResponse{
				ID:          dept.ID,
				Name:        dept.Name,
				Description: dept.Description,
				CreatedAt:   dept.CreatedAt,
			})
		}
		responses.WriteSuccess(w, map[string][]departmentResponse{"departments": out})
	}
}
