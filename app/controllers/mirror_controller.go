package controllers

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/stockmirror/app/models"
	"github.com/shashiranjanraj/stockmirror/app/services"
	"github.com/shashiranjanraj/stockmirror/pkg/response"
	"github.com/shashiranjanraj/stockmirror/pkg/sse"
	"github.com/shashiranjanraj/stockmirror/pkg/storage"
)

const heartbeat = 25 * time.Second

// MirrorController exposes the session itself: status, reload, backups, UI
// preferences and the change stream.
type MirrorController struct {
	mirror *services.Mirror
	disk   storage.Disk
}

// NewMirrorController builds the controller. disk may be nil, in which case
// the backup endpoint answers 503.
func NewMirrorController(m *services.Mirror, disk storage.Disk) *MirrorController {
	return &MirrorController{mirror: m, disk: disk}
}

type mirrorStatus struct {
	Ready    bool      `json:"ready"`
	Remote   bool      `json:"remote"`
	LoadedAt time.Time `json:"loadedAt"`
	Counts   struct {
		Products   int `json:"products"`
		Clients    int `json:"clients"`
		Categories int `json:"categories"`
		Sales      int `json:"sales"`
		Stock      int `json:"stock"`
	} `json:"counts"`
}

func (c *MirrorController) Health(w http.ResponseWriter, _ *http.Request) {
	if !c.mirror.Ready() {
		response.Unavailable(w, "loading")
		return
	}
	response.Success(w, map[string]string{"status": "ok"})
}

func (c *MirrorController) Status(w http.ResponseWriter, _ *http.Request) {
	s := c.mirror.Snapshot()
	var out mirrorStatus
	out.Ready = c.mirror.Ready()
	out.Remote = c.mirror.IsRemote()
	out.LoadedAt = c.mirror.LoadedAt()
	out.Counts.Products = len(s.Products)
	out.Counts.Clients = len(s.Clients)
	out.Counts.Categories = len(s.Categories)
	out.Counts.Sales = len(s.Sales)
	out.Counts.Stock = len(s.Stock)
	response.Success(w, out)
}

func (c *MirrorController) Reload(w http.ResponseWriter, r *http.Request) {
	if err := c.mirror.Reload(r.Context()); err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, "Reloaded", nil)
}

func (c *MirrorController) Backup(w http.ResponseWriter, r *http.Request) {
	if c.disk == nil {
		response.Unavailable(w, "No backup disk is configured.")
		return
	}
	path, err := c.mirror.Backup(r.Context(), c.disk)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, map[string]string{"path": path})
}

// Backups lists the snapshot files on the backup disk, oldest first.
func (c *MirrorController) Backups(w http.ResponseWriter, r *http.Request) {
	if c.disk == nil {
		response.Unavailable(w, "No backup disk is configured.")
		return
	}
	names, err := services.Backups(r.Context(), c.disk)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, names)
}

func (c *MirrorController) Preferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := c.mirror.Preferences(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, prefs)
}

func (c *MirrorController) SavePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs models.Preferences
	if !decodePatch(w, r, &prefs) {
		return
	}
	if err := c.mirror.SavePreferences(r.Context(), prefs); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, prefs)
}

// Events streams every persisted change as a "changed" SSE event.
func (c *MirrorController) Events(w http.ResponseWriter, r *http.Request) {
	events, cancel := c.mirror.Bus().Stream(services.ChangedTopic, 16)
	defer cancel()

	stream := sse.New(w, r)
	if stream == nil {
		return
	}
	_ = stream.Pipe("changed", events, heartbeat)
}
