package database

import (
	"fmt"

	"skillbridge_backend/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate выполняет миграцию всех моделей
func AutoMigrate(db *gorm.DB) error {
	// uuid_generate_v4() для первичных ключей
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid-ossp extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Purchase{},
		&models.Job{},
		&models.JobApplication{},
		&models.Upload{},
		&models.RefreshToken{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}

	// Не больше одной активной покупки на пару пользователь+курс.
	// Проверка в сервисе не атомарна, гонку двух параллельных подач
	// закрывает только ограничение в БД. Rejected не учитывается:
	// после отказа можно подать заново.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_purchase
		ON purchases (user_id, course_id)
		WHERE status IN ('submitted', 'approved')`).Error
	if err != nil {
		return fmt.Errorf("failed to create uniq_active_purchase index: %w", err)
	}

	return nil
}
