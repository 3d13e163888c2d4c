package clock

import (
	"time"

	"go-approvals/internal/common/models"
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

// System reads the wall clock in store precision.
func System() Clock { return models.Now }

// Fixed always returns t.
func Fixed(t time.Time) Clock {
	t = models.Normalize(t)
	return func() time.Time { return t }
}
