package drbg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReseedPolicy(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	base := reseedSnapshot{
		genCounter:     1,
		interval:       100,
		lastReseed:     now.Add(-time.Minute),
		timeInterval:   time.Hour,
		forkCount:      3,
		forkGeneration: 3,
	}

	tests := []struct {
		name   string
		mutate func(*reseedSnapshot)
		want   reseedReason
	}{
		{"fresh state", func(s *reseedSnapshot) {}, reseedNotRequired},
		{"counter at interval", func(s *reseedSnapshot) { s.genCounter = 100 }, reseedNotRequired},
		{"counter past interval", func(s *reseedSnapshot) { s.genCounter = 101 }, reseedInterval},
		{"interval disabled", func(s *reseedSnapshot) { s.genCounter = 1 << 30; s.interval = 0 }, reseedNotRequired},
		{"time at interval", func(s *reseedSnapshot) { s.lastReseed = now.Add(-time.Hour) }, reseedNotRequired},
		{"time past interval", func(s *reseedSnapshot) { s.lastReseed = now.Add(-time.Hour - time.Second) }, reseedTimeInterval},
		{"time interval disabled", func(s *reseedSnapshot) { s.lastReseed = now.Add(-24 * time.Hour); s.timeInterval = 0 }, reseedNotRequired},
		{"never reseeded", func(s *reseedSnapshot) { s.lastReseed = time.Time{} }, reseedNotRequired},
		{"fork", func(s *reseedSnapshot) { s.forkGeneration = 4 }, reseedFork},
		{"fork with everything disabled", func(s *reseedSnapshot) {
			s.forkGeneration = 4
			s.interval = 0
			s.timeInterval = 0
		}, reseedFork},
		{"fork wins over interval", func(s *reseedSnapshot) {
			s.forkGeneration = 4
			s.genCounter = 101
		}, reseedFork},
		{"parent in sync", func(s *reseedSnapshot) {
			s.hasParent = true
			s.parentProp = 7
			s.nextProp = 7
		}, reseedNotRequired},
		{"parent advanced", func(s *reseedSnapshot) {
			s.hasParent = true
			s.parentProp = 8
			s.nextProp = 7
		}, reseedParent},
		{"parent advanced repeatedly", func(s *reseedSnapshot) {
			s.hasParent = true
			s.parentProp = 12
			s.nextProp = 7
		}, reseedParent},
		{"no parent ignores counters", func(s *reseedSnapshot) {
			s.hasParent = false
			s.parentProp = 12
			s.nextProp = 7
		}, reseedNotRequired},
	}
	for _, tt := range tests {
		s := base
		tt.mutate(&s)
		assert.Equal(t, tt.want, reseedRequired(s, now), tt.name)
	}
}

func TestReseedReasonString(t *testing.T) {
	assert.Equal(t, "NotRequired", reseedNotRequired.String())
	assert.Equal(t, "Fork", reseedFork.String())
	assert.Equal(t, "Interval", reseedInterval.String())
	assert.Equal(t, "TimeInterval", reseedTimeInterval.String())
	assert.Equal(t, "Parent", reseedParent.String())
	assert.Equal(t, "Unknown", reseedReason(99).String())
}
