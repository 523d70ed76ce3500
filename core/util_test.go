package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "   ", want: ""},
		{in: " 6A ", want: "6A"},
		{in: "  Nguyen   Van\tAn \n", want: "Nguyen Van An"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanString(tt.in))
		})
	}
}

func TestParseOrdering(t *testing.T) {
	allowed := []string{"name", "grade"}
	tests := []struct {
		name string
		raw  string
		want []DBOrdering
	}{
		{name: "empty", raw: ""},
		{name: "asc", raw: "name", want: []DBOrdering{{Field: "name", Ascending: true}}},
		{
			name: "mixed",
			raw:  " -grade , name",
			want: []DBOrdering{{Field: "grade"}, {Field: "name", Ascending: true}},
		},
		{name: "not allowed", raw: "password,-id;drop", want: nil},
		{name: "lone dash", raw: "-", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOrdering(tt.raw, allowed...))
		})
	}
	assert.Equal(t, "grade DESC", DBOrdering{Field: "grade"}.String())
}
