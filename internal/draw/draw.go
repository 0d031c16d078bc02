// internal/draw/draw.go
//
// Secret sources for the game engine.
//   - Random: crypto-random uniform draw in [1, n].
//   - Daily:  deterministic draw keyed on the UTC date, HMAC(salt, YYYY-MM-DD) % n + 1,
//             so every round started on the same day gets the same secret.
package draw

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"math/big"
	"time"
)

// Random draws uniformly from crypto/rand.
type Random struct{}

// Draw returns a value in [1, n]. n < 1 yields 1.
func (Random) Draw(n int) int {
	if n <= 1 {
		return 1
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 1
	}
	return int(v.Int64()) + 1
}

// Daily derives the value from the current date.
type Daily struct {
	Salt string
	Now  func() time.Time // defaults to time.Now
}

// Draw returns a value in [1, n] that only changes when the UTC date does.
func (d Daily) Draw(n int) int {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return Index(now(), d.Salt, n) + 1
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Index returns a deterministic index in [0, n) for a date using HMAC(salt, YYYY-MM-DD) % n.
func Index(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// New returns the source named by kind ("daily" or anything else for random).
func New(kind, salt string) interface{ Draw(n int) int } {
	if kind == "daily" {
		return Daily{Salt: salt}
	}
	return Random{}
}
