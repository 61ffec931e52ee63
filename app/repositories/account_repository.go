package repositories

import (
	"github.com/shashiranjanraj/vyapar/app/models"
	"gorm.io/gorm"
)

// AccountRepository handles database operations for Account.
type AccountRepository struct{}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{}
}

// FindByEmail looks up an account by email address.
func (r *AccountRepository) FindByEmail(tx *gorm.DB, email string) (models.Account, error) {
	var account models.Account
	err := tx.Where("email = ?", email).First(&account).Error
	return account, err
}

// FindByID looks up an account by primary key.
func (r *AccountRepository) FindByID(tx *gorm.DB, id uint) (models.Account, error) {
	var account models.Account
	err := tx.First(&account, id).Error
	return account, err
}

// Create persists a new account record.
func (r *AccountRepository) Create(tx *gorm.DB, account *models.Account) error {
	return tx.Create(account).Error
}

// UpdateFields applies a partial column update to an account.
func (r *AccountRepository) UpdateFields(tx *gorm.DB, id uint, fields map[string]interface{}) error {
	return tx.Model(&models.Account{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes the account row.
func (r *AccountRepository) Delete(tx *gorm.DB, id uint) error {
	return tx.Unscoped().Delete(&models.Account{}, id).Error
}
