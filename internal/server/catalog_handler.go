package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vitebski/odh-assistant/internal/datasource"
	"github.com/vitebski/odh-assistant/pkg/models"
)

type CatalogHandler struct {
	client datasource.Client
}

func NewCatalogHandler(client datasource.Client) *CatalogHandler {
	return &CatalogHandler{client: client}
}

// ListTables lists selectable tables, filtered by ?search and paged by ?page and ?page_size
func (h *CatalogHandler) ListTables(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid page")
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(datasource.DefaultPageSize)))
	if err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid page size")
		return
	}

	tables, err := h.client.List(c.Request.Context(), models.ListParams{
		Search: c.Query("search"),
		Paging: models.Paging{Page: page, PageSize: pageSize},
	})
	if err != nil {
		Fail(c, http.StatusInternalServerError, err, "Failed to list tables")
		return
	}
	Success(c, http.StatusOK, tables, "")
}
