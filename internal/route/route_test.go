package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		target        Route
		authenticated bool
		want          Route
	}{
		{Tasks, false, Login},
		{Dashboard, false, Login},
		{Tasks, true, Tasks},
		{Dashboard, true, Dashboard},
		{Login, false, Login},
		{Register, false, Register},
		{Login, true, Tasks},
		{Register, true, Tasks},
		{Home, false, Login},
		{Home, true, Tasks},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Resolve(tc.target, tc.authenticated), "%s authenticated=%v", tc.target, tc.authenticated)
	}
}

func TestParse(t *testing.T) {
	r, err := Parse("dashboard")
	require.NoError(t, err)
	assert.Equal(t, Dashboard, r)

	_, err = Parse("admin")
	assert.Error(t, err)
}
