// Package randompkg provides functionality for generating random application items in tests.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// IntBetween generates a random integer between min and max inclusive.
func IntBetween(min, max int64) int64 {
	return min + Intn(int(max-min+1))
}

// String generates a random string of length n.
func String(n int) string {
	var sb strings.Builder

	k := len(alphabet)

	for i := 0; i < n; i++ {
		c := alphabet[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// Owner generates a random operator username.
func Owner() string {
	return String(6)
}

// Name generates a random capitalized first or last name.
func Name() string {
	s := String(7)
	return strings.ToUpper(s[:1]) + s[1:]
}

// MoneyAmountBetween generates a random amount of money between min and max with 2 fractional digits.
func MoneyAmountBetween(min, max int64) decimal.Decimal {
	cents := IntBetween(min*100, max*100)
	return decimal.New(cents, -2)
}

// Currency generates a random currency code.
func Currency() string {
	currencies := []string{"USD", "EUR", "CNY"}
	return currencies[Intn(len(currencies))]
}

// Email generates a random email.
func Email() string {
	return fmt.Sprintf("%s@email.com", String(10))
}
