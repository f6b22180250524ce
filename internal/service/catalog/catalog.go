package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/danuart/invitation-shop/internal/logging"
	"github.com/danuart/invitation-shop/internal/models"
	"github.com/danuart/invitation-shop/internal/repo"
	"github.com/danuart/invitation-shop/internal/transport"
)

var ErrNotFound = errors.New("not found") // 404

const DefaultPageSize = 12

// Service is the read side of the template catalog. Orders reference
// templates through it; nothing here ever writes a template except the
// seeding path.
type Service struct {
	Repo     *repo.GormRepo
	Cache    *redis.Client // nil disables caching
	CacheTTL time.Duration
}

func New(r *repo.GormRepo, cache *redis.Client, ttl time.Duration) *Service {
	return &Service{Repo: r, Cache: cache, CacheTTL: ttl}
}

// GetTemplate returns any template by id, inactive ones included: orders
// need their historical reference even after a design is retired.
func (s *Service) GetTemplate(ctx context.Context, id uint) (*models.InvitationTemplate, error) {
	tpl, err := s.Repo.GetTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: template %d", ErrNotFound, id)
		}
		return nil, err
	}
	return tpl, nil
}

// ListActive returns a page of purchasable templates, newest first. Pages are
// served from redis when available and fall back to the database.
func (s *Service) ListActive(ctx context.Context, page, size int) (*transport.TemplatePage, error) {
	offset, limit := calculate(page, size)
	key := fmt.Sprintf("templates:active:%d:%d", page, limit)

	if s.Cache != nil {
		if raw, err := s.Cache.Get(ctx, key).Result(); err == nil {
			var cached transport.TemplatePage
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	total, items, err := s.Repo.ListActiveTemplates(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	result := &transport.TemplatePage{
		Data: items,
		Meta: transport.NewPageMeta(page, limit, offset, total),
	}

	if s.Cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.Cache.Set(ctx, key, raw, s.CacheTTL).Err(); err != nil {
				logging.FromContext(ctx).Warn("template page not cached", "key", key, "error", err)
			}
		}
	}

	return result, nil
}

// Featured returns the newest n active templates for the landing page.
func (s *Service) Featured(ctx context.Context, n int) ([]models.InvitationTemplate, error) {
	if n < 1 {
		n = 6
	}
	return s.Repo.FeaturedTemplates(ctx, n)
}

func calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}
