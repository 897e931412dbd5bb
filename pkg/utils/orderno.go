package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOrderNo builds a human-readable order number of the form
// ORD-<unix-millis>-<4 random digits>. The millisecond timestamp plus the
// random suffix keeps collisions negligible at call rates up to one per ms.
func GenerateOrderNo() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	suffix := int64(0)
	if err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("ORD-%d-%04d", time.Now().UnixMilli(), suffix)
}
