package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"civic-issues-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	input := `title,description,status,priority,department,latitude,longitude,user_id,image_url,created_at
Pothole on Main St,Deep pothole,,high,public_works,39.78,-89.65,u1,issues/a.jpg,
Overflowing bin,Near park,resolved,,sanitation,39.79,-89.64,u2,,2026-03-01T08:00:00Z
`

	issues, err := parseCSV(strings.NewReader(input), now)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	first := issues[0]
	assert.Equal(t, "Pothole on Main St", first.Title)
	assert.Equal(t, models.StatusReported, first.Status)
	assert.Equal(t, models.PriorityHigh, *first.Priority)
	assert.Equal(t, models.DepartmentPublicWorks, *first.Department)
	assert.Equal(t, "issues/a.jpg", *first.ImageURL)
	assert.Equal(t, now, first.CreatedAt)
	assert.Nil(t, first.ResolvedAt)

	second := issues[1]
	assert.Equal(t, models.StatusResolved, second.Status)
	assert.Nil(t, second.Priority)
	assert.Nil(t, second.ImageURL)
	assert.Equal(t, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), second.CreatedAt)
	require.NotNil(t, second.ResolvedAt)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestParseCSV_Errors(t *testing.T) {
	header := "title,description,status,priority,department,latitude,longitude,user_id,image_url\n"

	tests := []struct {
		name string
		row  string
	}{
		{name: "too few columns", row: "a,b,c\n"},
		{name: "bad latitude", row: "t,d,,,,north,1,u,\n"},
		{name: "NaN latitude", row: "t,d,,,,NaN,1,u,\n"},
		{name: "infinite longitude", row: "t,d,,,,1,-Inf,u,\n"},
		{name: "longitude out of range", row: "t,d,,,,1,200,u,\n"},
		{name: "unknown status", row: "t,d,lost,,,1,1,u,\n"},
		{name: "unknown department", row: "t,d,,,police,1,1,u,\n"},
		{name: "missing user", row: "t,d,,,,1,1,,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCSV(strings.NewReader(header+tt.row), time.Now())
			assert.Error(t, err)
		})
	}
}

func TestRootCmd_RequiresFile(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, out.String(), "file")
}
