package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSessionDate(t *testing.T) {
	for _, raw := range []string{"02.10.2026", "2026-10-02"} {
		date, err := parseSessionDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "2026-10-02", date.String())
	}

	for _, raw := range []string{"", "2.10.26", "31.02.2026", "2026/10/02"} {
		_, err := parseSessionDate(raw)
		assert.Error(t, err, raw)
	}
}

func TestCommandArg(t *testing.T) {
	assert.Equal(t, "", commandArg("/history"))
	assert.Equal(t, "abc", commandArg("/history abc"))
	assert.Equal(t, "abc", commandArg("  /history   abc  extra"))
}
