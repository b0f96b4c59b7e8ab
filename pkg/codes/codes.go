// Package codes generates the short codes people type to join a lobby or to
// reclaim their identity from another device.
package codes

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet leaves out 0, O, 1 and I.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const DefaultLength = 6

func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}
	code, err := gonanoid.Generate(Alphabet, length)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return code, nil
}

// Normalize uppercases a typed code and drops spaces and dashes.
func Normalize(code string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(code) {
		switch r {
		case ' ', '\t', '\n', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func Valid(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}
