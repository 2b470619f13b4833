package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/luggage-storage-reservation/internal/repository"
)

// StorageHandler serves the store's storage unit directory.
type StorageHandler struct {
	storages *repository.StorageRepo
}

func NewStorageHandler(storages *repository.StorageRepo) *StorageHandler {
	return &StorageHandler{storages: storages}
}

// List returns every unit of the store plus an occupancy summary per size
// class. An optional size_class query param narrows the unit list.
func (h *StorageHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	sid := storeID(c)

	units, err := h.storages.ListByStore(ctx, sid, c.QueryParam("size_class"))
	if err != nil {
		return writeServiceError(c, err)
	}
	occupancy, err := h.storages.OccupancyByClass(ctx, sid)
	if err != nil {
		return writeServiceError(c, err)
	}

	summary := make(map[string]echo.Map, len(occupancy))
	for class, counts := range occupancy {
		summary[class] = echo.Map{"occupied": counts[0], "total": counts[1]}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"storages":  units,
		"occupancy": summary,
	})
}
