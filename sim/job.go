package sim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// JobRequest describes a job to create. Zero fields take the configured defaults.
type JobRequest struct {
	Name           string
	Priority       float64
	RequiredTime   int
	RequiredMemory int
}

// RawJobRequest is a job request as typed by a user: every field is free text
// and may be blank.
type RawJobRequest struct {
	Name           string
	Priority       string
	RequiredTime   string
	RequiredMemory string
}

// JobValidator turns external job requests into valid ones.
// In lenient mode invalid fields are replaced by defaults and a warning is logged;
// in strict mode they are rejected with ErrInvalidInput. Blank fields always
// take defaults.
type JobValidator struct {
	Defaults    JobDefaults
	PriorityMax float64
	Strict      bool
}

// NewJobValidator builds a validator from the engine configuration.
func NewJobValidator(cfg *Config) JobValidator {
	return JobValidator{Defaults: cfg.Defaults, PriorityMax: cfg.PriorityMax, Strict: cfg.StrictInput}
}

// Parse converts a raw request into a validated JobRequest.
func (v JobValidator) Parse(raw RawJobRequest) (JobRequest, error) {
	req := JobRequest{Name: strings.TrimSpace(raw.Name)}

	if s := strings.TrimSpace(raw.Priority); s != "" {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			if v.Strict {
				return JobRequest{}, fmt.Errorf("priority %q is not a number: %w", s, ErrInvalidInput)
			}
			logrus.Warnf("priority %q is not a number, using %v", s, v.Defaults.Priority)
		} else {
			req.Priority = v.checkPriority(p, &err)
			if err != nil {
				return JobRequest{}, err
			}
		}
	}

	var err error
	if req.RequiredTime, err = v.parseUnits("required time", raw.RequiredTime, v.Defaults.RequiredTime); err != nil {
		return JobRequest{}, err
	}
	if req.RequiredMemory, err = v.parseUnits("required memory", raw.RequiredMemory, v.Defaults.RequiredMemory); err != nil {
		return JobRequest{}, err
	}
	return v.Normalize(req)
}

// Normalize fills zero fields with defaults and checks ranges.
func (v JobValidator) Normalize(req JobRequest) (JobRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = v.Defaults.Name
	}

	var err error
	if req.Priority == 0 {
		req.Priority = v.Defaults.Priority
	} else if req.Priority = v.checkPriority(req.Priority, &err); err != nil {
		return JobRequest{}, err
	}

	if req.RequiredTime, err = v.checkUnits("required time", req.RequiredTime, v.Defaults.RequiredTime); err != nil {
		return JobRequest{}, err
	}
	if req.RequiredMemory, err = v.checkUnits("required memory", req.RequiredMemory, v.Defaults.RequiredMemory); err != nil {
		return JobRequest{}, err
	}
	return req, nil
}

// checkPriority rejects non-positive or over-max priorities in strict mode;
// otherwise substitutes the default or clamps to the maximum.
func (v JobValidator) checkPriority(p float64, errOut *error) float64 {
	switch {
	case p <= 0:
		if v.Strict {
			*errOut = fmt.Errorf("priority %v must be positive: %w", p, ErrInvalidInput)
			return 0
		}
		logrus.Warnf("priority %v is not positive, using %v", p, v.Defaults.Priority)
		return v.Defaults.Priority
	case p > v.PriorityMax:
		if v.Strict {
			*errOut = fmt.Errorf("priority %v exceeds maximum %v: %w", p, v.PriorityMax, ErrInvalidInput)
			return 0
		}
		logrus.Warnf("priority %v exceeds maximum, clamping to %v", p, v.PriorityMax)
		return v.PriorityMax
	}
	return p
}

func (v JobValidator) parseUnits(what, s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		if v.Strict {
			return 0, fmt.Errorf("%s %q is not an integer: %w", what, s, ErrInvalidInput)
		}
		logrus.Warnf("%s %q is not an integer, using %d", what, s, def)
		return def, nil
	}
	return v.checkUnits(what, n, def)
}

func (v JobValidator) checkUnits(what string, n, def int) (int, error) {
	switch {
	case n == 0:
		return def, nil
	case n < 0:
		if v.Strict {
			return 0, fmt.Errorf("%s %d must be positive: %w", what, n, ErrInvalidInput)
		}
		logrus.Warnf("%s %d is not positive, using %d", what, n, def)
		return def, nil
	}
	return n, nil
}
