package order

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/danuart/invitation-shop/internal/models"
	"github.com/danuart/invitation-shop/internal/repo"
	"github.com/danuart/invitation-shop/internal/transport"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.InvitationTemplate{},
		&models.Order{},
		&models.Guest{},
	))
	return db
}

// fakeFiles records storage calls so tests can assert on the file-store
// discipline without touching the disk.
type fakeFiles struct {
	saves   []string
	deletes []string
	saveErr error
}

func (f *fakeFiles) Save(namespace, filename string, r io.Reader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	io.Copy(io.Discard, r)
	path := fmt.Sprintf("%s/stored-%d-%s", namespace, len(f.saves), filename)
	f.saves = append(f.saves, path)
	return path, nil
}

func (f *fakeFiles) Delete(path string) error {
	f.deletes = append(f.deletes, path)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeFiles, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	files := &fakeFiles{}
	return New(repo.New(db), files), files, db
}

func seedTemplate(t *testing.T, db *gorm.DB, price float64, active bool) *models.InvitationTemplate {
	t.Helper()
	tpl := &models.InvitationTemplate{
		Name:        "Elegant Gold Wedding",
		Description: "A luxurious gold-themed wedding invitation.",
		Price:       price,
		Category:    models.CategoryWedding,
		IsActive:    active,
	}
	require.NoError(t, db.Create(tpl).Error)
	return tpl
}

func validCustomization() map[string]string {
	return map[string]string{
		"bride_name":    "Ana",
		"groom_name":    "Budi",
		"event_date":    time.Now().AddDate(0, 6, 0).Format("2006-01-02"),
		"event_time":    "17:00",
		"venue_name":    "Grand Ballroom",
		"venue_address": "Jl. Sudirman No. 1, Jakarta",
	}
}

func createOrder(t *testing.T, svc *Service, userID uint, tplID uint, guests []transport.GuestEntry) *models.Order {
	t.Helper()
	created, err := svc.Create(context.Background(), userID, transport.CreateOrderRequest{
		InvitationTemplateID: tplID,
		CustomizationData:    validCustomization(),
		GuestList:            guests,
	})
	require.NoError(t, err)
	return created
}

func TestCreate_SnapshotsTemplatePrice(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	tpl := seedTemplate(t, db, 89.99, true)

	created := createOrder(t, svc, 1, tpl.ID, nil)
	assert.Equal(t, 89.99, created.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, created.Status)

	// raising the template price later never touches existing orders
	require.NoError(t, db.Model(tpl).Update("price", 129.99).Error)

	reloaded, err := svc.Get(context.Background(), 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 89.99, reloaded.TotalAmount)
}

func TestCreate_InactiveTemplateAccepted(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, false)

	created := createOrder(t, svc, 1, tpl.ID, nil)
	assert.Equal(t, tpl.ID, created.InvitationTemplateID)
}

func TestCreate_TemplateNotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), 1, transport.CreateOrderRequest{
		InvitationTemplateID: 999,
		CustomizationData:    validCustomization(),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_Unauthenticated(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)

	_, err := svc.Create(context.Background(), 0, transport.CreateOrderRequest{
		InvitationTemplateID: tpl.ID,
		CustomizationData:    validCustomization(),
	})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)

	tests := []struct {
		name   string
		mutate func(data map[string]string)
	}{
		{"missing bride name", func(d map[string]string) { delete(d, "bride_name") }},
		{"blank groom name", func(d map[string]string) { d["groom_name"] = "  " }},
		{"missing venue address", func(d map[string]string) { delete(d, "venue_address") }},
		{"event date today", func(d map[string]string) { d["event_date"] = time.Now().Format("2006-01-02") }},
		{"event date in the past", func(d map[string]string) { d["event_date"] = "2020-01-01" }},
		{"event date malformed", func(d map[string]string) { d["event_date"] = "next June" }},
		{"maps link not a url", func(d map[string]string) { d["google_maps_link"] = "not-a-url" }},
		{"bank account number too long", func(d map[string]string) { d["bank_account_number"] = strings.Repeat("9", 51) }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := validCustomization()
			tt.mutate(data)

			_, err := svc.Create(context.Background(), 1, transport.CreateOrderRequest{
				InvitationTemplateID: tpl.ID,
				CustomizationData:    data,
			})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreate_BlankGuestsDroppedSilently(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)

	created := createOrder(t, svc, 1, tpl.ID, []transport.GuestEntry{
		{Name: "Citra", Email: "citra@example.com"},
		{Name: "   "},
		{Name: ""},
		{Name: "Dewi", Phone: "+62811111111"},
	})

	var guests []models.Guest
	require.NoError(t, db.Where("order_id = ?", created.ID).Order("id").Find(&guests).Error)
	require.Len(t, guests, 2)
	assert.Equal(t, "Citra", guests[0].Name)
	assert.Equal(t, "Dewi", guests[1].Name)
}

func TestCreate_InvalidGuestEmail(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)

	_, err := svc.Create(context.Background(), 1, transport.CreateOrderRequest{
		InvitationTemplateID: tpl.ID,
		CustomizationData:    validCustomization(),
		GuestList:            []transport.GuestEntry{{Name: "Citra", Email: "not-an-email"}},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderNumbers_FormatAndUniqueness(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)

	format := regexp.MustCompile(fmt.Sprintf(`^INV-%d-[0-9A-F]{8}$`, time.Now().Year()))

	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		created := createOrder(t, svc, 1, tpl.ID, nil)
		assert.Regexp(t, format, created.OrderNumber)
		assert.False(t, seen[created.OrderNumber], "duplicate order number %s", created.OrderNumber)
		seen[created.OrderNumber] = true
	}
}

func TestOrderNumbers_DistinctUnderConcurrentCreates(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)

	// single connection so sqlite serializes the writes; the generate-check
	// loop still races across goroutines
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	const n = 16
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := svc.Create(context.Background(), 1, transport.CreateOrderRequest{
				InvitationTemplateID: tpl.ID,
				CustomizationData:    validCustomization(),
			})
			if err != nil {
				t.Error(err)
				return
			}
			numbers <- created.OrderNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for number := range numbers {
		assert.False(t, seen[number], "duplicate order number %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
}

func TestGet_OwnershipAndPreloads(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)
	created := createOrder(t, svc, 1, tpl.ID, []transport.GuestEntry{{Name: "Citra"}})

	got, err := svc.Get(context.Background(), 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, tpl.Name, got.Template.Name)
	require.Len(t, got.Guests, 1)

	_, err = svc.Get(context.Background(), 2, created.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(context.Background(), 1, created.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_ShallowMerge(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)
	created := createOrder(t, svc, 1, tpl.ID, nil)

	updated, err := svc.Update(context.Background(), 1, created.ID, transport.UpdateOrderRequest{
		CustomizationData: map[string]string{"event_time": "18:00"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "18:00", updated.CustomizationData["event_time"])
	assert.Equal(t, "Ana", updated.CustomizationData["bride_name"])
	assert.Equal(t, "Grand Ballroom", updated.CustomizationData["venue_name"])
}

func TestUpdate_PatchValidation(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)
	created := createOrder(t, svc, 1, tpl.ID, nil)

	tests := []struct {
		name  string
		patch map[string]string
	}{
		{"past event date", map[string]string{"event_date": "2020-01-01"}},
		{"blanked bride name", map[string]string{"bride_name": ""}},
		{"whitespace venue name", map[string]string{"venue_name": "   "}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), 1, created.ID, transport.UpdateOrderRequest{
				CustomizationData: tt.patch,
			}, nil)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// the rejected patches left the stored data alone
	reloaded, err := svc.Get(context.Background(), 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", reloaded.CustomizationData["bride_name"])
	assert.Equal(t, "Grand Ballroom", reloaded.CustomizationData["venue_name"])
}

func TestUpdate_GuestReplacement(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)
	created := createOrder(t, svc, 1, tpl.ID, []transport.GuestEntry{
		{Name: "Citra"}, {Name: "Dewi"},
	})

	replacement := []transport.GuestEntry{{Name: "Eko", Email: "eko@example.com"}}
	updated, err := svc.Update(context.Background(), 1, created.ID, transport.UpdateOrderRequest{
		GuestList: &replacement,
	}, nil)
	require.NoError(t, err)

	require.Len(t, updated.Guests, 1)
	assert.Equal(t, "Eko", updated.Guests[0].Name)

	var count int64
	require.NoError(t, db.Model(&models.Guest{}).Where("order_id = ?", created.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdate_GuestReplacementRejectsBlankNames(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)
	created := createOrder(t, svc, 1, tpl.ID, []transport.GuestEntry{{Name: "Citra"}})

	replacement := []transport.GuestEntry{{Name: "Eko"}, {Name: "   "}}
	_, err := svc.Update(context.Background(), 1, created.ID, transport.UpdateOrderRequest{
		GuestList: &replacement,
	}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	// the stored guest list is untouched
	var guests []models.Guest
	require.NoError(t, db.Where("order_id = ?", created.ID).Find(&guests).Error)
	require.Len(t, guests, 1)
	assert.Equal(t, "Citra", guests[0].Name)
}

func TestUpdate_ProofUploadTransitionsStatus(t *testing.T) {
	t.Parallel()

	svc, files, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)
	created := createOrder(t, svc, 1, tpl.ID, nil)

	updated, err := svc.Update(context.Background(), 1, created.ID, transport.UpdateOrderRequest{}, &ProofUpload{
		Filename:    "transfer.jpg",
		ContentType: "image/jpeg",
		Size:        1024,
		Content:     strings.NewReader("fake image"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPaymentPending, updated.Status)
	require.NotNil(t, updated.PaymentProof)
	require.Len(t, files.saves, 1)
	assert.Empty(t, files.deletes)
}

func TestUpdate_ProofReplacementDeletesOldFile(t *testing.T) {
	t.Parallel()

	svc, files, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)
	created := createOrder(t, svc, 1, tpl.ID, nil)

	first, err := svc.Update(context.Background(), 1, created.ID, transport.UpdateOrderRequest{}, &ProofUpload{
		Filename: "first.png", ContentType: "image/png", Size: 10, Content: strings.NewReader("a"),
	})
	require.NoError(t, err)
	firstPath := *first.PaymentProof

	second, err := svc.Update(context.Background(), 1, created.ID, transport.UpdateOrderRequest{}, &ProofUpload{
		Filename: "second.pdf", ContentType: "application/pdf", Size: 10, Content: strings.NewReader("b"),
	})
	require.NoError(t, err)

	assert.NotEqual(t, firstPath, *second.PaymentProof)
	require.Len(t, files.deletes, 1)
	assert.Equal(t, firstPath, files.deletes[0])
}

func TestUpdate_ProofValidation(t *testing.T) {
	t.Parallel()

	svc, files, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)
	created := createOrder(t, svc, 1, tpl.ID, nil)

	tests := []struct {
		name  string
		proof ProofUpload
	}{
		{"wrong type", ProofUpload{Filename: "proof.gif", ContentType: "image/gif", Size: 10}},
		{"too large", ProofUpload{Filename: "proof.jpg", ContentType: "image/jpeg", Size: (2 << 20) + 1}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			p := tt.proof
			p.Content = strings.NewReader("x")
			_, err := svc.Update(context.Background(), 1, created.ID, transport.UpdateOrderRequest{}, &p)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// nothing was stored and the order is untouched
	assert.Empty(t, files.saves)
	reloaded, err := svc.Get(context.Background(), 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, reloaded.Status)
	assert.Nil(t, reloaded.PaymentProof)
}

func TestUpdate_LockedStatuses(t *testing.T) {
	t.Parallel()

	for _, status := range []string{models.OrderStatusPaid, models.OrderStatusCompleted} {
		status := status
		t.Run(status, func(t *testing.T) {
			t.Parallel()

			svc, files, db := newTestService(t)
			tpl := seedTemplate(t, db, 49.99, true)
			created := createOrder(t, svc, 1, tpl.ID, nil)
			require.NoError(t, db.Model(&models.Order{}).Where("id = ?", created.ID).Update("status", status).Error)

			_, err := svc.Update(context.Background(), 1, created.ID, transport.UpdateOrderRequest{
				CustomizationData: map[string]string{"event_time": "20:00"},
			}, nil)
			assert.ErrorIs(t, err, ErrForbidden)

			err = svc.Cancel(context.Background(), 1, created.ID)
			assert.ErrorIs(t, err, ErrForbidden)
			assert.Empty(t, files.deletes)

			var reloaded models.Order
			require.NoError(t, db.First(&reloaded, created.ID).Error)
			assert.Equal(t, status, reloaded.Status)
			assert.Equal(t, "17:00", reloaded.CustomizationData["event_time"])
		})
	}
}

func TestUpdate_NonOwnerForbidden(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)
	created := createOrder(t, svc, 1, tpl.ID, nil)

	_, err := svc.Update(context.Background(), 2, created.ID, transport.UpdateOrderRequest{
		CustomizationData: map[string]string{"event_time": "20:00"},
	}, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Cancel(context.Background(), 2, created.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancel_DeletesProofOrderAndGuests(t *testing.T) {
	t.Parallel()

	svc, files, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)
	created := createOrder(t, svc, 1, tpl.ID, []transport.GuestEntry{{Name: "Citra"}, {Name: "Dewi"}})

	updated, err := svc.Update(context.Background(), 1, created.ID, transport.UpdateOrderRequest{}, &ProofUpload{
		Filename: "proof.jpg", ContentType: "image/jpeg", Size: 10, Content: strings.NewReader("x"),
	})
	require.NoError(t, err)
	proofPath := *updated.PaymentProof

	require.NoError(t, svc.Cancel(context.Background(), 1, created.ID))

	assert.Contains(t, files.deletes, proofPath)

	var orders, guests int64
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", created.ID).Count(&orders).Error)
	require.NoError(t, db.Model(&models.Guest{}).Where("order_id = ?", created.ID).Count(&guests).Error)
	assert.Zero(t, orders)
	assert.Zero(t, guests)
}

func TestCancel_WithoutProofSkipsFileStore(t *testing.T) {
	t.Parallel()

	svc, files, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)
	created := createOrder(t, svc, 1, tpl.ID, nil)

	require.NoError(t, svc.Cancel(context.Background(), 1, created.ID))
	assert.Empty(t, files.deletes)
}

func TestList_OwnScopedNewestFirst(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t)
	tpl := seedTemplate(t, db, 49.99, true)

	var mine []uint
	for i := 0; i < 3; i++ {
		created := createOrder(t, svc, 1, tpl.ID, nil)
		mine = append(mine, created.ID)
		require.NoError(t, db.Model(&models.Order{}).Where("id = ?", created.ID).
			Update("created_at", time.Now().Add(time.Duration(i)*time.Minute)).Error)
	}
	createOrder(t, svc, 2, tpl.ID, nil)

	total, orders, err := svc.List(context.Background(), 1, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, orders, 3)
	assert.Equal(t, mine[2], orders[0].ID)
	assert.Equal(t, mine[0], orders[2].ID)
}
