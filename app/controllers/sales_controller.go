package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/stockmirror/app/services"
	"github.com/shashiranjanraj/stockmirror/pkg/response"
)

type SaleController struct {
	mirror *services.Mirror
}

func NewSaleController(m *services.Mirror) *SaleController {
	return &SaleController{mirror: m}
}

func (c *SaleController) Index(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, c.mirror.Sales())
}

func (c *SaleController) Show(w http.ResponseWriter, r *http.Request) {
	rec, ok := c.mirror.Sale(id(r))
	show(w, rec, ok)
}

func (c *SaleController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.SaleInput
	if !decode(w, r, &in) {
		return
	}
	res, err := c.mirror.CreateSale(r.Context(), in)
	respond(w, r, res, err)
}

func (c *SaleController) Update(w http.ResponseWriter, r *http.Request) {
	var patch services.SalePatch
	if !decodePatch(w, r, &patch) {
		return
	}
	res, err := c.mirror.UpdateSale(r.Context(), id(r), patch)
	respond(w, r, res, err)
}

// Destroy drops the sale record and leaves stock alone.
func (c *SaleController) Destroy(w http.ResponseWriter, r *http.Request) {
	res, err := c.mirror.DeleteSale(r.Context(), id(r))
	respond(w, r, res, err)
}

// Cancel gives the sold quantity back to the product and drops the sale.
func (c *SaleController) Cancel(w http.ResponseWriter, r *http.Request) {
	res, err := c.mirror.CancelSale(r.Context(), id(r))
	respond(w, r, res, err)
}
