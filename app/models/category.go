package models

type Category struct {
	ID          string `json:"id"          csv:"id"`
	Name        string `json:"name"        csv:"name"`
	Description string `json:"description" csv:"description"`
	Notes       string `json:"notes"       csv:"notes"`
	Status      Status `json:"status"      csv:"status"`
}
