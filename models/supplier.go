package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nirmantrack/sitebooks_backend/config"
	"github.com/nirmantrack/sitebooks_backend/utils"
)

type Supplier struct {
	ID            int       `gorm:"primary_key" json:"id"`
	ProjectId     string    `gorm:"index;not null" json:"project_id"`
	Name          string    `gorm:"size:200;not null" json:"name" binding:"required"`
	ContactPerson string    `gorm:"size:100" json:"contact_person"`
	Phone         string    `gorm:"size:20" json:"phone"`
	Email         string    `gorm:"size:100" json:"email"`
	Address       string    `gorm:"type:text" json:"address"`
	Category      string    `gorm:"size:100" json:"category"`
	PanNumber     string    `gorm:"size:20" json:"pan_number"`
	BankName      string    `gorm:"size:100" json:"bank_name"`
	AccountNumber string    `gorm:"size:50" json:"account_number"`
	IsActive      *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	Category      string `json:"category"`
	PanNumber     string `json:"pan_number"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
}

func (input *NewSupplier) validate() error {
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return fmt.Errorf("invalid phone number: %v", err)
		}
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email")
	}
	return nil
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	projectId, err := projectIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	supplier := Supplier{
		ProjectId:     projectId,
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Phone:         input.Phone,
		Email:         input.Email,
		Address:       input.Address,
		Category:      input.Category,
		PanNumber:     input.PanNumber,
		BankName:      input.BankName,
		AccountNumber: input.AccountNumber,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func UpdateSupplier(ctx context.Context, id int, input *NewSupplier) (*Supplier, error) {
	projectId, err := projectIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	supplier, err := utils.FetchModel[Supplier](ctx, projectId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(supplier).Updates(map[string]interface{}{
		"Name":          input.Name,
		"ContactPerson": input.ContactPerson,
		"Phone":         input.Phone,
		"Email":         input.Email,
		"Address":       input.Address,
		"Category":      input.Category,
		"PanNumber":     input.PanNumber,
		"BankName":      input.BankName,
		"AccountNumber": input.AccountNumber,
	}).Error
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

func DeleteSupplier(ctx context.Context, id int) (*Supplier, error) {
	projectId, err := projectIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	result, err := utils.FetchModel[Supplier](ctx, projectId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	return GetResource[Supplier](ctx, id)
}

func GetSuppliers(ctx context.Context, name *string, category *string) ([]*Supplier, error) {
	projectId, err := projectIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("project_id = ?", projectId)
	if name != nil && *name != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if category != nil && *category != "" {
		dbCtx = dbCtx.Where("category = ?", *category)
	}
	var results []*Supplier
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
