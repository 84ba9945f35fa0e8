package candidate

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/interviewer/internal/resume"
)

const (
	FieldName  = "name"
	FieldEmail = "email"
	FieldPhone = "phone"
)

var (
	ErrNotFound       = errors.New("candidate not found")
	ErrInvalidProfile = errors.New("invalid candidate profile")
)

// Candidate is the identity record an interview belongs to. Missing fields
// are derived from Name, Email and Phone and never stored on their own.
type Candidate struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	ResumeSummary  string    `json:"resumeSummary,omitempty"`
	ResumeFileName string    `json:"resumeFileName,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// New validates the profile and creates a candidate with a fresh id.
func New(profile Profile, now time.Time) (*Candidate, error) {
	profile = profile.trimmed()
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return &Candidate{
		ID:        uuid.NewString(),
		Name:      profile.Name,
		Email:     profile.Email,
		Phone:     profile.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MissingFields lists the identity fields that are currently empty.
func (c *Candidate) MissingFields() []string {
	missing := make([]string, 0, 3)
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, FieldName)
	}
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, FieldEmail)
	}
	if strings.TrimSpace(c.Phone) == "" {
		missing = append(missing, FieldPhone)
	}
	return missing
}

// ApplyProfile overwrites the identity fields set in the profile. Empty
// profile fields leave the stored value as is.
func (c *Candidate) ApplyProfile(profile Profile, now time.Time) error {
	profile = profile.trimmed()
	if err := profile.Validate(); err != nil {
		return err
	}

	changed := false
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&c.Name, profile.Name},
		{&c.Email, profile.Email},
		{&c.Phone, profile.Phone},
	} {
		if f.src != "" && *f.dst != f.src {
			*f.dst = f.src
			changed = true
		}
	}

	if changed {
		c.UpdatedAt = now
	}
	return nil
}

// ApplyResume fills empty identity fields from an extraction result and
// keeps its summary and file name. Values that would not pass profile
// validation are ignored. It returns the names of the filled fields.
func (c *Candidate) ApplyResume(result *resume.Result, now time.Time) []string {
	if result == nil {
		return nil
	}

	filled := make([]string, 0, 3)
	for _, f := range []struct {
		name string
		dst  *string
		src  string
	}{
		{FieldName, &c.Name, result.Name},
		{FieldEmail, &c.Email, result.Email},
		{FieldPhone, &c.Phone, result.Phone},
	} {
		src := strings.TrimSpace(f.src)
		if src == "" || strings.TrimSpace(*f.dst) != "" {
			continue
		}
		if validateField(f.name, src) != nil {
			continue
		}
		*f.dst = src
		filled = append(filled, f.name)
	}

	c.ResumeSummary = strings.TrimSpace(result.Summary)
	c.ResumeFileName = result.FileName
	c.UpdatedAt = now

	return filled
}

type candidateJSON Candidate

// MarshalJSON adds the derived missingFields list.
func (c Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		candidateJSON
		MissingFields []string `json:"missingFields"`
	}{
		candidateJSON: candidateJSON(c),
		MissingFields: c.MissingFields(),
	})
}
