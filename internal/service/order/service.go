package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/danuart/invitation-shop/internal/logging"
	"github.com/danuart/invitation-shop/internal/models"
	"github.com/danuart/invitation-shop/internal/repo"
	"github.com/danuart/invitation-shop/internal/transport"
)

const (
	proofNamespace    = "payment-proofs"
	maxProofSizeBytes = 2 << 20
)

var allowedProofTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// FileStore is the slice of blob storage the order core needs: durable writes
// and idempotent deletes.
type FileStore interface {
	Save(namespace, filename string, r io.Reader) (string, error)
	Delete(path string) error
}

// ProofUpload is an already size-checked payment-proof file handed over by
// the transport layer. The service re-validates type and size: an update
// that skipped request validation must still be rejected here.
type ProofUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type Service struct {
	Repo  *repo.GormRepo
	Files FileStore
}

func New(r *repo.GormRepo, files FileStore) *Service {
	return &Service{Repo: r, Files: files}
}

// Create validates the customization set, snapshots the template price and
// persists the order in pending state. Guest entries with blank names are
// dropped, not rejected.
func (s *Service) Create(ctx context.Context, userID uint, req transport.CreateOrderRequest) (*models.Order, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	if err := validateCustomization(req.CustomizationData, true, time.Now()); err != nil {
		return nil, err
	}

	guests, err := buildGuests(req.GuestList, true)
	if err != nil {
		return nil, err
	}

	tpl, err := s.Repo.GetTemplate(ctx, req.InvitationTemplateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: template %d", ErrNotFound, req.InvitationTemplateID)
		}
		return nil, err
	}

	number, err := s.generateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:               userID,
		InvitationTemplateID: tpl.ID,
		OrderNumber:          number,
		TotalAmount:          tpl.Price,
		Status:               models.OrderStatusPending,
		CustomizationData:    req.CustomizationData,
	}

	created, err := s.Repo.CreateOrder(ctx, order, guests)
	if err != nil {
		return nil, err
	}
	created.Template = *tpl
	return created, nil
}

// Get returns the order with its template and guest list. Only the owner may
// read an order, in any status.
func (s *Service) Get(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *Service) List(ctx context.Context, userID uint, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, userID, offset, limit)
}

func (s *Service) Recent(ctx context.Context, userID uint, n int) ([]models.Order, error) {
	return s.Repo.RecentOrders(ctx, userID, n)
}

// Update applies a partial edit: customization patch (one-level merge), a
// replacement payment proof, a replacement guest list, in any combination.
// Every entry of a replacement guest list must carry a name; this is
// stricter than Create on purpose.
func (s *Service) Update(ctx context.Context, userID, orderID uint, req transport.UpdateOrderRequest, proof *ProofUpload) (*models.Order, error) {
	current, err := s.mutableOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if req.CustomizationData != nil {
		if err := validateCustomization(req.CustomizationData, false, time.Now()); err != nil {
			return nil, err
		}
		current.CustomizationData = mergeCustomization(current.CustomizationData, req.CustomizationData)
	}

	var guests []models.Guest
	if req.GuestList != nil {
		guests, err = buildGuests(*req.GuestList, false)
		if err != nil {
			return nil, err
		}
	}

	var oldProof *string
	if proof != nil {
		if err := validateProof(proof); err != nil {
			return nil, err
		}
		path, err := s.Files.Save(proofNamespace, proof.Filename, proof.Content)
		if err != nil {
			return nil, fmt.Errorf("store payment proof: %w", err)
		}
		oldProof = current.PaymentProof
		current.PaymentProof = &path
		current.Status = models.OrderStatusPaymentPending
	}

	if err := s.Repo.SaveOrder(ctx, current, guests); err != nil {
		return nil, err
	}

	// The new proof is durably stored and the row points at it; the old file
	// is now unreferenced. A failed delete leaves an orphan, which is fine.
	if oldProof != nil {
		if err := s.Files.Delete(*oldProof); err != nil {
			logging.FromContext(ctx).Warn("old payment proof not deleted", "path", *oldProof, "error", err)
		}
	}

	return s.Repo.GetOrder(ctx, orderID)
}

// Cancel deletes a still-mutable order, its guests and its stored proof.
func (s *Service) Cancel(ctx context.Context, userID, orderID uint) error {
	current, err := s.mutableOrder(ctx, userID, orderID)
	if err != nil {
		return err
	}

	if err := s.Repo.DeleteOrder(ctx, orderID); err != nil {
		return err
	}

	if current.PaymentProof != nil {
		if err := s.Files.Delete(*current.PaymentProof); err != nil {
			logging.FromContext(ctx).Warn("payment proof not deleted on cancel", "path", *current.PaymentProof, "error", err)
		}
	}
	return nil
}

// mutableOrder loads the order and enforces the two mutation rules: the
// caller owns the order and the status still allows customer edits.
func (s *Service) mutableOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	order, err := s.Repo.GetOrderRow(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	if !order.Mutable() {
		return nil, fmt.Errorf("%w: order is %s", ErrForbidden, order.Status)
	}
	return order, nil
}

func validateProof(p *ProofUpload) error {
	if !allowedProofTypes[p.ContentType] {
		return fmt.Errorf("%w: payment proof must be a JPG, PNG or PDF file", ErrValidation)
	}
	if p.Size > maxProofSizeBytes {
		return fmt.Errorf("%w: payment proof file size must not exceed 2MB", ErrValidation)
	}
	return nil
}

// buildGuests turns guest entries into rows. With skipBlank set (create),
// nameless entries are silently dropped; otherwise (update) they fail
// validation.
func buildGuests(entries []transport.GuestEntry, skipBlank bool) ([]models.Guest, error) {
	guests := make([]models.Guest, 0, len(entries))
	for i, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			if skipBlank {
				continue
			}
			return nil, fmt.Errorf("%w: guest %d: name is required", ErrValidation, i+1)
		}
		if entry.Email != "" {
			if _, err := mail.ParseAddress(entry.Email); err != nil {
				return nil, fmt.Errorf("%w: guest %d: invalid email", ErrValidation, i+1)
			}
		}
		g := models.Guest{Name: name}
		if entry.Email != "" {
			email := entry.Email
			g.Email = &email
		}
		if entry.Phone != "" {
			phone := entry.Phone
			g.Phone = &phone
		}
		guests = append(guests, g)
	}
	return guests, nil
}
