package order

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	orderNumberPrefix      = "INV"
	orderNumberMaxAttempts = 10
)

// generateOrderNumber produces INV-<year>-<8 uppercase hex chars> and retries
// until the number is unused. Collisions per attempt are negligible, so the
// attempt cap exists only to bound a pathological database.
func (s *Service) generateOrderNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < orderNumberMaxAttempts; attempt++ {
		entropy := make([]byte, 16)
		if _, err := rand.Read(entropy); err != nil {
			return "", fmt.Errorf("order number entropy: %w", err)
		}

		sum := sha256.Sum256(entropy)
		token := strings.ToUpper(hex.EncodeToString(sum[:4]))
		number := fmt.Sprintf("%s-%d-%s", orderNumberPrefix, time.Now().Year(), token)

		exists, err := s.Repo.OrderNumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique order number after %d attempts", orderNumberMaxAttempts)
}
