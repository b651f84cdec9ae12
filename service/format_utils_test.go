package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{10000, "10,000"},
		{1234567, "1,234,567"},
		{-900, "-900"},
		{-1500, "-1,500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.amount))
	}
}

func TestPlayMessage(t *testing.T) {
	assert.Equal(t, "WIN! Draw: 1234, Total Prize: 10,000", PlayMessage("1234", 10000))
	assert.Equal(t, "Lose. Draw: 0042", PlayMessage("0042", 0))
}
