package repo

import (
	"context"

	"github.com/danuart/invitation-shop/internal/models"
)

// GetTemplate loads a template by id. Inactive templates are returned too:
// existing orders keep referencing retired designs.
func (r *GormRepo) GetTemplate(ctx context.Context, id uint) (*models.InvitationTemplate, error) {
	var tpl models.InvitationTemplate
	if err := r.DB.WithContext(ctx).First(&tpl, id).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *GormRepo) ListActiveTemplates(ctx context.Context, offset, limit int) (int64, []models.InvitationTemplate, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.InvitationTemplate{}).Where("is_active = ?", true).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.InvitationTemplate
	err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) FeaturedTemplates(ctx context.Context, n int) ([]models.InvitationTemplate, error) {
	var items []models.InvitationTemplate
	err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(n).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateTemplate(ctx context.Context, tpl *models.InvitationTemplate) error {
	return r.DB.WithContext(ctx).Create(tpl).Error
}
