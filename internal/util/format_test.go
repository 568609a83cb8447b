package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCommitment(t *testing.T) {
	cases := map[int]string{
		15:  "15 minutes",
		59:  "59 minutes",
		60:  "1 hour",
		90:  "1.5 hours",
		120: "2 hours",
		150: "2.5 hours",
	}
	for minutes, want := range cases {
		assert.Equal(t, want, FormatCommitment(minutes), "minutes=%d", minutes)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		weeks int
		want  string
	}{
		{1, "1 week"},
		{2, "2 weeks"},
		{3, "3 weeks"},
		{4, "1 month"},
		{5, "1 month 1 week"},
		{6, "1 month 2 weeks"},
		{8, "2 months"},
		{11, "2 months 3 weeks"},
		{47, "11 months 3 weeks"},
		{48, "1 year"},
		{52, "1 year 1 month"},
		{60, "1 year 3 months"},
		{96, "2 years"},
		{99, "2 years"},
		{104, "2 years 2 months"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDuration(tc.weeks), "weeks=%d", tc.weeks)
	}
}
