package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSampleSpec(t *testing.T) {
	cases := map[string]int{
		"":      defaultSampleEvery,
		"10":    10,
		"0":     0,
		"1/4":   4,
		"3/10":  3,
		"5/5":   1,
		"x":     defaultSampleEvery,
		"1/0":   defaultSampleEvery,
		" 1/8 ": 8,
	}
	for spec, want := range cases {
		assert.Equal(t, want, parseSampleSpec(spec), spec)
	}
}

func TestSamplerAllow(t *testing.T) {
	s := newSampler(3)
	var got []bool
	for i := 0; i < 6; i++ {
		got = append(got, s.Allow())
	}
	assert.Equal(t, []bool{true, false, false, true, false, false}, got)

	s.Set(0)
	assert.True(t, s.Allow())
	assert.True(t, s.Allow())
}
