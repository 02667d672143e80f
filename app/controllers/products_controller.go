package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/stockmirror/app/services"
	"github.com/shashiranjanraj/stockmirror/pkg/response"
)

type ProductController struct {
	mirror *services.Mirror
}

func NewProductController(m *services.Mirror) *ProductController {
	return &ProductController{mirror: m}
}

func (c *ProductController) Index(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, c.mirror.Products())
}

func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	rec, ok := c.mirror.Product(id(r))
	show(w, rec, ok)
}

func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if !decode(w, r, &in) {
		return
	}
	res, err := c.mirror.CreateProduct(r.Context(), in)
	respond(w, r, res, err)
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	var patch services.ProductPatch
	if !decodePatch(w, r, &patch) {
		return
	}
	res, err := c.mirror.UpdateProduct(r.Context(), id(r), patch)
	respond(w, r, res, err)
}

func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	res, err := c.mirror.DeleteProduct(r.Context(), id(r))
	respond(w, r, res, err)
}

// Sell is the quick-sale action on a product row.
func (c *ProductController) Sell(w http.ResponseWriter, r *http.Request) {
	var in services.QuickSaleInput
	if !decode(w, r, &in) {
		return
	}
	res, err := c.mirror.SellProduct(r.Context(), id(r), in)
	respond(w, r, res, err)
}
