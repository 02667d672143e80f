package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/stockmirror/app/services"
	"github.com/shashiranjanraj/stockmirror/pkg/response"
)

type ClientController struct {
	mirror *services.Mirror
}

func NewClientController(m *services.Mirror) *ClientController {
	return &ClientController{mirror: m}
}

func (c *ClientController) Index(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, c.mirror.Clients())
}

func (c *ClientController) Show(w http.ResponseWriter, r *http.Request) {
	rec, ok := c.mirror.Client(id(r))
	show(w, rec, ok)
}

func (c *ClientController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.ClientInput
	if !decode(w, r, &in) {
		return
	}
	res, err := c.mirror.CreateClient(r.Context(), in)
	respond(w, r, res, err)
}

func (c *ClientController) Update(w http.ResponseWriter, r *http.Request) {
	var patch services.ClientPatch
	if !decodePatch(w, r, &patch) {
		return
	}
	res, err := c.mirror.UpdateClient(r.Context(), id(r), patch)
	respond(w, r, res, err)
}

func (c *ClientController) Destroy(w http.ResponseWriter, r *http.Request) {
	res, err := c.mirror.DeleteClient(r.Context(), id(r))
	respond(w, r, res, err)
}
