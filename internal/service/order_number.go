package service

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	orderNumberSuffixLen = 9
	// 36^9, the number of distinct suffixes.
	orderNumberSuffixSpace = 101559956668416
)

// newOrderNumber returns ORD-<unix millis>-<9 base36 chars>. The suffix is drawn from
// a random UUID so two numbers in the same millisecond collide with probability 36^-9.
func newOrderNumber(now time.Time) string {
	id := uuid.New()
	n := binary.BigEndian.Uint64(id[:8]) % orderNumberSuffixSpace

	suffix := strings.ToUpper(strconv.FormatUint(n, 36))
	if pad := orderNumberSuffixLen - len(suffix); pad > 0 {
		suffix = strings.Repeat("0", pad) + suffix
	}

	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}
