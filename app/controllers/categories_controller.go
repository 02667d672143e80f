package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/stockmirror/app/services"
	"github.com/shashiranjanraj/stockmirror/pkg/response"
)

type CategoryController struct {
	mirror *services.Mirror
}

func NewCategoryController(m *services.Mirror) *CategoryController {
	return &CategoryController{mirror: m}
}

func (c *CategoryController) Index(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, c.mirror.Categories())
}

func (c *CategoryController) Show(w http.ResponseWriter, r *http.Request) {
	rec, ok := c.mirror.Category(id(r))
	show(w, rec, ok)
}

func (c *CategoryController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if !decode(w, r, &in) {
		return
	}
	res, err := c.mirror.CreateCategory(r.Context(), in)
	respond(w, r, res, err)
}

func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	var patch services.CategoryPatch
	if !decodePatch(w, r, &patch) {
		return
	}
	res, err := c.mirror.UpdateCategory(r.Context(), id(r), patch)
	respond(w, r, res, err)
}

func (c *CategoryController) Destroy(w http.ResponseWriter, r *http.Request) {
	res, err := c.mirror.DeleteCategory(r.Context(), id(r))
	respond(w, r, res, err)
}
