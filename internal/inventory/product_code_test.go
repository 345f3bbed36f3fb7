package inventory

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateProductCode(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 1000; i++ {
		code := GenerateProductCode()
		assert.True(t, pattern.MatchString(code), "kod 6 haneli olmalı: %s", code)
		assert.NotEqual(t, byte('0'), code[0], "kod sıfırla başlamamalı: %s", code)
	}
}
