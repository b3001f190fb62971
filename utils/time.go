package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// TimeAgo renders how long ago t was, relative to now.
func TimeAgo(t, now time.Time) string {
	diff := now.Sub(t)
	minutes := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := hours / 24

	switch {
	case days > 0:
		return plural(days, "day")
	case hours > 0:
		return plural(hours, "hour")
	case minutes > 0:
		return plural(minutes, "minute")
	default:
		return "Just now"
	}
}

func plural(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}

const inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateInviteCode returns a random 6-character uppercase alphanumeric code.
func GenerateInviteCode() (string, error) {
	code := make([]byte, 6)
	max := big.NewInt(int64(len(inviteAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = inviteAlphabet[n.Int64()]
	}
	return string(code), nil
}

// ParseDueDate validates a YYYY-MM-DD date string.
func ParseDueDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
