package utils

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNoFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{13}-\d{4}$`)
	for i := 0; i < 100; i++ {
		no := GenerateOrderNo()
		require.Regexp(t, pattern, no)

		parts := strings.Split(no, "-")
		ms, err := strconv.ParseInt(parts[1], 10, 64)
		require.NoError(t, err)
		generated := time.UnixMilli(ms)
		assert.WithinDuration(t, time.Now(), generated, time.Minute)
	}
}
