package models

import (
	"log"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&BusinessType{}, &Business{},
		&CheckIn{}, &Case{}, &ResolutionPaper{},
		&ImportJob{}, &DuplicateReview{},
		&DailySequence{},
		&Notification{}, &AuditLog{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
