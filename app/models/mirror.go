package models

import (
	"slices"
	"time"
)

// Collection names one of the five mirrored collections. The value doubles
// as the local storage key.
type Collection string

const (
	Products   Collection = "products"
	Clients    Collection = "clients"
	Categories Collection = "categories"
	Sales      Collection = "sales"
	Stock      Collection = "stock"
)

// AllCollections lists the collections in load order.
var AllCollections = []Collection{Products, Clients, Categories, Sales, Stock}

// Preference keys stored next to the collections.
const (
	PrefDarkTheme       = "darkTheme"
	PrefIsAuthenticated = "isAuthenticated"
)

// Snapshot is a point-in-time copy of the mirror.
type Snapshot struct {
	Products   []Product    `json:"products"`
	Clients    []Client     `json:"clients"`
	Categories []Category   `json:"categories"`
	Sales      []Sale       `json:"sales"`
	Stock      []StockEntry `json:"stock"`
}

// Op is the kind of change a mutation applied.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpCancel Op = "cancel"
	OpAdjust Op = "adjust"
	OpReload Op = "reload"
)

// Change is published after a mutation has been persisted.
type Change struct {
	Collection Collection `json:"collection"`
	Op         Op         `json:"op"`
	ID         string     `json:"id,omitempty"`
	At         time.Time  `json:"at"`
}

// Preferences are the UI flags kept in local storage.
type Preferences struct {
	DarkTheme       bool `json:"darkTheme"`
	IsAuthenticated bool `json:"isAuthenticated"`
}

// Clone copies every collection so the result shares no backing arrays with s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Products:   slices.Clone(s.Products),
		Clients:    slices.Clone(s.Clients),
		Categories: slices.Clone(s.Categories),
		Sales:      slices.Clone(s.Sales),
		Stock:      slices.Clone(s.Stock),
	}
}
