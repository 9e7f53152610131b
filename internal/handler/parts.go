package handler

import (
	"net/http"

	"sprockets/internal/apierror"
	"sprockets/internal/dto"
	"sprockets/internal/service"

	"github.com/gin-gonic/gin"
)

type PartsHandler struct{ svc service.PartService }

func NewPartsHandler(svc service.PartService) *PartsHandler {
	return &PartsHandler{svc: svc}
}

// Add godoc
// @Summary Add a part
// @Tags parts
// @Accept json
// @Produce json
// @Param body body dto.PartRequest true "Part"
// @Success 201 {object} dto.PartResponse
// @Failure 400 {object} apierror.ValidationError
// @Router /api/parts [post]
func (h *PartsHandler) Add(c *gin.Context) {
	var req dto.PartRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Add(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List returns every part, or the name matches when ?name= is given.
func (h *PartsHandler) List(c *gin.Context) {
	if name, ok := c.GetQuery("name"); ok {
		h.search(c, name)
		return
	}
	resp, err := h.svc.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PartsHandler) GetByID(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SearchByName godoc
// @Summary Search parts by name
// @Description Case-insensitive substring match; a blank name lists every part.
// @Tags parts
// @Produce json
// @Param name path string true "Name fragment"
// @Success 200 {array} dto.PartResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/parts/name/{name} [get]
func (h *PartsHandler) SearchByName(c *gin.Context) {
	h.search(c, c.Param("name"))
}

func (h *PartsHandler) search(c *gin.Context, name string) {
	resp, err := h.svc.Search(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(resp) == 0 {
		c.JSON(http.StatusNotFound, apierror.New("No parts found"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update replaces every field of the part. Switching type clears the field
// that belonged to the old type.
func (h *PartsHandler) Update(c *gin.Context) {
	var req dto.PartRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Delete a part
// @Description Also removes the part from every product that lists it.
// @Tags parts
// @Produce json
// @Param id path string true "Part id"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/parts/{id} [delete]
func (h *PartsHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Part removed"})
}
