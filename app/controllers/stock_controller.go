package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/stockmirror/app/services"
	"github.com/shashiranjanraj/stockmirror/pkg/response"
)

type StockController struct {
	mirror *services.Mirror
}

func NewStockController(m *services.Mirror) *StockController {
	return &StockController{mirror: m}
}

func (c *StockController) Index(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, c.mirror.Stock())
}

func (c *StockController) Show(w http.ResponseWriter, r *http.Request) {
	rec, ok := c.mirror.StockEntry(id(r))
	show(w, rec, ok)
}

func (c *StockController) Adjust(w http.ResponseWriter, r *http.Request) {
	var in services.AdjustInput
	if !decodePatch(w, r, &in) {
		return
	}
	res, err := c.mirror.AdjustStock(r.Context(), id(r), in)
	respond(w, r, res, err)
}
