package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgeToGroupKey_Boundaries(t *testing.T) {
	cases := []struct {
		age  int
		want GroupKey
		ok   bool
	}{
		{3, "", false},
		{4, Group4to6, true},
		{6, Group4to6, true},
		{7, Group7to10, true},
		{10, Group7to10, true},
		{11, Group11to13, true},
		{13, Group11to13, true},
		{14, Group14to17, true},
		{17, Group14to17, true},
		{18, "", false},
		{0, "", false},
		{-1, "", false},
		{99, "", false},
	}

	for _, c := range cases {
		got, ok := AgeToGroupKey(c.age)
		assert.Equal(t, c.ok, ok, "age %d ok", c.age)
		assert.Equal(t, c.want, got, "age %d group", c.age)
	}
}

func TestValidGroupKey(t *testing.T) {
	for _, g := range AllGroups {
		assert.True(t, ValidGroupKey(string(g)))
	}
	assert.False(t, ValidGroupKey("18-21"))
	assert.False(t, ValidGroupKey(""))
	assert.False(t, ValidGroupKey("7 - 10"))
}
