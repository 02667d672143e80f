package models

import "time"

// The *Row types describe the remote tables in their canonical column
// layout. They are used to provision and seed a remote database; the mirror
// itself reads rows generically and maps them through app/adapters.

type ProductRow struct {
	ID       uint    `gorm:"primaryKey"`
	Name     string  `gorm:"size:255;not null;index"`
	Category string  `gorm:"size:120"`
	Price    float64 `gorm:"not null;default:0"`
	StockQty int     `gorm:"not null;default:0"`
	StockMin int     `gorm:"not null;default:0"`
	Active   bool    `gorm:"not null;default:true;index"`
}

func (ProductRow) TableName() string { return string(Products) }

type ClientRow struct {
	ID     uint   `gorm:"primaryKey"`
	Name   string `gorm:"size:255;not null"`
	Email  string `gorm:"size:255"`
	Phone  string `gorm:"size:40"`
	City   string `gorm:"size:120"`
	Status string `gorm:"size:20;default:active"`
	Active bool   `gorm:"not null;default:true;index"`
}

func (ClientRow) TableName() string { return string(Clients) }

type CategoryRow struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:120;not null"`
	Description string `gorm:"type:text"`
	Notes       string `gorm:"type:text"`
	Status      string `gorm:"size:20;default:active"`
	Active      bool   `gorm:"not null;default:true;index"`
}

func (CategoryRow) TableName() string { return string(Categories) }

type SaleRow struct {
	ID          uint      `gorm:"primaryKey"`
	ClientName  string    `gorm:"size:255;not null"`
	ProductName string    `gorm:"size:255;not null"`
	Quantity    int       `gorm:"not null"`
	Amount      float64   `gorm:"not null"`
	Date        time.Time `gorm:"not null;index"`
	Active      bool      `gorm:"not null;default:true;index"`
}

func (SaleRow) TableName() string { return string(Sales) }

type StockRow struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"not null;index"`
	Quantity  int  `gorm:"not null;default:0"`
	Minimum   int  `gorm:"not null;default:0"`
	Active    bool `gorm:"not null;default:true;index"`
}

func (StockRow) TableName() string { return string(Stock) }
