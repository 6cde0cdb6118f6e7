package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLike(t *testing.T) {
	tbl := []struct {
		pattern, s string
		res        bool
	}{
		{"/dev/%", "/dev/null", true},
		{"/dev/%", "/dev/", true},
		{"/dev/%", "/dev", false},
		{"/etc/", "/etc/", true},
		{"/etc/", "/etc", false},
		{"%", "", true},
		{"", "", true},
		{"", "a", false},
		{"_", "a", true},
		{"_", "", false},
		{"a_c", "abc", true},
		{"a_c", "abbc", false},
		{"ABC", "abc", true},
		{"%BiN%", "/usr/bin/ls", true},
		{"%.go", "main.go", true},
		{"%.go", "main.gox", false},
		{"%a%b%", "xxaxxbxx", true},
		{"%a%b%", "xxbxxaxx", false},
		{`\Windows\%`, `\Windows\System32`, true},
		{`\Windows\%`, `/Windows/System32`, false},
		{`\Windows\%`, `\windows\x`, true},
		{"пр_вет", "привет", true},
		{"100%", "100 percent", true},
	}

	for _, tt := range tbl {
		t.Run(tt.pattern+" "+tt.s, func(t *testing.T) {
			assert.Equal(t, tt.res, Like(tt.pattern, tt.s))
		})
	}
}

func TestLikePrefix(t *testing.T) {
	tbl := []struct {
		pattern, prefix string
		literal         bool
	}{
		{"/dev/%", "/dev/", false},
		{"/etc/hosts", "/etc/hosts", true},
		{"/tmp/a_c", "/tmp/a", false},
		{"%", "", false},
		{"", "", true},
	}

	for _, tt := range tbl {
		t.Run(tt.pattern, func(t *testing.T) {
			prefix, literal := LikePrefix(tt.pattern)
			assert.Equal(t, tt.prefix, prefix)
			assert.Equal(t, tt.literal, literal)
		})
	}
}
