package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelCurve(t *testing.T) {
	testCases := []struct {
		xp    int64
		level int
	}{
		{0, 0},
		{-5, 0},
		{99, 0},
		{100, 1},
		{399, 1},
		{400, 2},
		{899, 2},
		{900, 3},
		{1_000_000, 100},
		{999_999, 99},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.level, LevelForXP(tc.xp), "xp=%d", tc.xp)
	}

	for level := 0; level < 200; level++ {
		assert.Equal(t, level, LevelForXP(XPForLevel(level)))
	}
}

func TestLevelRecord_Progress(t *testing.T) {
	r := LevelRecord{XP: 550, Level: 2}
	into, span := r.Progress()
	assert.Equal(t, int64(150), into)
	assert.Equal(t, int64(500), span)
}

func TestTemporaryChannel_PermitReject(t *testing.T) {
	c := TemporaryChannel{Whitelist: "[]", Blacklist: `["2"]`}

	c.Permit("1")
	c.Permit("1")
	c.Permit("2")
	assert.Equal(t, []string{"1", "2"}, c.Permitted())
	assert.Empty(t, c.Rejected())

	c.Reject("1")
	assert.Equal(t, []string{"2"}, c.Permitted())
	assert.Equal(t, []string{"1"}, c.Rejected())
}

func TestEvent_CanManage(t *testing.T) {
	e := Event{CreatedBy: "1", Managers: EncodeIDs([]string{"2", "3"})}
	assert.True(t, e.CanManage("1"))
	assert.True(t, e.CanManage("3"))
	assert.False(t, e.CanManage("4"))

	e.Managers = "not json"
	assert.Nil(t, e.ManagerIDs())
}
