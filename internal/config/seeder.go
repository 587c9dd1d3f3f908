package config

import (
	"log"

	"svco-apply/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// SeedMasterData seeds the application stages and university reference data.
func SeedMasterData(db *gorm.DB) error {
	if err := seedApplicationStages(db); err != nil {
		return err
	}

	if err := seedUniversities(db); err != nil {
		return err
	}

	log.Println("master data seeded")
	return nil
}

func seedApplicationStages(db *gorm.DB) error {
	stages := []models.ApplicationStage{
		{
			Number:      1,
			Code:        "PAYMENT",
			Name:        "Application fee payment",
			Description: "Team lead submits the application form and pays the fee",
		},
		{
			Number:      2,
			Code:        "SCREENING",
			Name:        "Screening",
			Description: "Submissions are screened before interviews are scheduled",
		},
		{
			Number:      3,
			Code:        "INTERVIEW",
			Name:        "Interview",
			Description: "Shortlisted teams are interviewed",
		},
		{
			Number:      4,
			Code:        "COMPLETED",
			Name:        "Admission decided",
			Description: "The batch made its admission decision for this team",
		},
	}

	for _, stage := range stages {
		var existing models.ApplicationStage
		if err := db.Where("number = ?", stage.Number).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := db.Create(&stage).Error; err != nil {
					return err
				}
				log.Printf("   Created application_stage %d: %s", stage.Number, stage.Name)
			}
		}
	}
	return nil
}

func seedUniversities(db *gorm.DB) error {
	universities := []models.University{
		{Name: "Indian Institute of Technology Madras", Location: "Chennai"},
		{Name: "College of Engineering Trivandrum", Location: "Thiruvananthapuram"},
		{Name: "National Institute of Technology Calicut", Location: "Kozhikode"},
		// Catch-all row for applicants whose university is not listed.
		{Name: "Other"},
	}

	for _, university := range universities {
		var existing models.University
		if err := db.Where("name = ?", university.Name).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := db.Create(&university).Error; err != nil {
					return err
				}
				log.Printf("   Created university: %s", university.Name)
			}
		}
	}
	return nil
}
