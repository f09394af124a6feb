package repositories

import (
	"strings"
)

// placeholders returns "?, ?, ?" for IN clauses of n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
