package models

import (
	"log"

	"github.com/mmdatafocus/estate_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&CommissionSetting{},
		&Deal{}, &Property{}, &Lead{}, &PropertyAmendment{},
		&CommissionReport{}, &CommissionReportLine{},
		&DailyActivityReport{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
