package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	orderNoPrefix = "ORD"
	// maxOrderNoAttempts bounds regeneration after a duplicate order number.
	maxOrderNoAttempts = 5
)

// NewOrderNo returns ORD, the date as yyyyMMdd, and six random upper-case
// characters, e.g. ORD20241015A1B2C3.
func NewOrderNo(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return orderNoPrefix + now.Format("20060102") + suffix
}
