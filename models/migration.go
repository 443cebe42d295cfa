package models

import (
	"log"

	"github.com/skladtech/inventory_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&Product{},
		&Supplier{}, &ExpenseReason{},
		&Invoice{}, &InvoiceItem{},
		&StockTransaction{},
		&Notification{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
