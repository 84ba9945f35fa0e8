package candidate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/interviewer/internal/resume"
)

var (
	created = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later   = created.Add(time.Hour)
)

func TestNewTracksMissingFields(t *testing.T) {
	c, err := New(Profile{Name: "  Jane Doe "}, created)
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Jane Doe", c.Name)
	assert.Equal(t, []string{FieldEmail, FieldPhone}, c.MissingFields())
	assert.Equal(t, created, c.CreatedAt)
	assert.Equal(t, created, c.UpdatedAt)
}

func TestNewRejectsInvalidProfile(t *testing.T) {
	cases := map[string]Profile{
		"bad email":          {Email: "jane-at-example"},
		"short phone":        {Phone: "555-1234"},
		"letters in phone":   {Phone: "call 555 123 4567"},
		"plus inside number": {Phone: "555+123+4567"},
	}

	for name, profile := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(profile, created)
			require.ErrorIs(t, err, ErrInvalidProfile)
		})
	}
}

func TestApplyProfileKeepsUnsetFields(t *testing.T) {
	c, err := New(Profile{Name: "Jane Doe", Email: "jane@example.com"}, created)
	require.NoError(t, err)

	require.NoError(t, c.ApplyProfile(Profile{Phone: "+1 (555) 123-4567"}, later))

	assert.Equal(t, "Jane Doe", c.Name)
	assert.Equal(t, "jane@example.com", c.Email)
	assert.Equal(t, "+1 (555) 123-4567", c.Phone)
	assert.Empty(t, c.MissingFields())
	assert.Equal(t, later, c.UpdatedAt)

	err = c.ApplyProfile(Profile{Email: "broken"}, later.Add(time.Hour))
	require.ErrorIs(t, err, ErrInvalidProfile)
	assert.Equal(t, "jane@example.com", c.Email)
	assert.Equal(t, later, c.UpdatedAt)
}

func TestApplyResumeBackfillsOnlyEmptyFields(t *testing.T) {
	c, err := New(Profile{Email: "jane@work.example"}, created)
	require.NoError(t, err)

	filled := c.ApplyResume(&resume.Result{
		Name:     "Jane A. Doe",
		Email:    "jane.doe@example.com",
		Phone:    "+1 (555) 123-4567",
		Summary:  " Senior engineer with 5 years of experience. ",
		FileName: "jane.pdf",
	}, later)

	assert.Equal(t, []string{FieldName, FieldPhone}, filled)
	assert.Equal(t, "Jane A. Doe", c.Name)
	assert.Equal(t, "jane@work.example", c.Email)
	assert.Equal(t, "+1 (555) 123-4567", c.Phone)
	assert.Equal(t, "Senior engineer with 5 years of experience.", c.ResumeSummary)
	assert.Equal(t, "jane.pdf", c.ResumeFileName)
	assert.Empty(t, c.MissingFields())
}

func TestApplyResumeSkipsInvalidValues(t *testing.T) {
	c, err := New(Profile{}, created)
	require.NoError(t, err)

	filled := c.ApplyResume(&resume.Result{Phone: "2019 - 2021", Summary: "x"}, later)

	assert.Empty(t, filled)
	assert.Equal(t, []string{FieldName, FieldEmail, FieldPhone}, c.MissingFields())
	assert.Nil(t, c.ApplyResume(nil, later))
}

func TestMarshalIncludesDerivedMissingFields(t *testing.T) {
	c, err := New(Profile{Name: "Jane Doe", Phone: "+1 555 123 4567"}, created)
	require.NoError(t, err)

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []any{"email"}, decoded["missingFields"])
	assert.Equal(t, "Jane Doe", decoded["name"])

	c.Email = "jane@example.com"
	raw, err = json.Marshal(c)
	require.NoError(t, err)

	var back Candidate
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, c.ID, back.ID)
	assert.Empty(t, back.MissingFields())
	assert.Contains(t, string(raw), `"missingFields":[]`)
}
