package config

import (
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/execfoundry/runpipe/internal/progress"
	runpipeerrors "github.com/execfoundry/runpipe/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseJob loads a job file from disk, validates it, and returns the
// resulting model.
func ParseJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, runpipeerrors.NewParseError(path, 0, err)
	}

	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, runpipeerrors.NewParseError(path, extractLine(err), err)
	}

	if err := ValidateJob(&job); err != nil {
		return nil, err
	}

	return &job, nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}

	return line
}

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New()
	})
	return validatorInst
}

// ValidateJob performs structural and cross-field validation on a job.
func ValidateJob(job *Job) error {
	if job == nil {
		return runpipeerrors.NewValidationError("job", "job is nil", nil)
	}

	if err := validatorInstance().Struct(job); err != nil {
		return convertValidationError(err)
	}

	if job.Settings.Timeout != "" {
		timeout, err := time.ParseDuration(job.Settings.Timeout)
		if err != nil {
			return runpipeerrors.NewValidationError("settings.timeout", fmt.Sprintf("%q is not a duration", job.Settings.Timeout), err)
		}
		if timeout < 0 {
			return runpipeerrors.NewValidationError("settings.timeout", "must not be negative", nil)
		}
	}

	for _, name := range job.Settings.Patterns {
		if _, ok := progress.Preset(name); !ok {
			return runpipeerrors.NewValidationError("settings.patterns", fmt.Sprintf("unknown pattern preset %q", name), nil)
		}
	}

	return nil
}

func convertValidationError(err error) error {
	if fieldErrors, ok := err.(validator.ValidationErrors); ok && len(fieldErrors) > 0 {
		first := fieldErrors[0]
		return runpipeerrors.NewValidationError(first.Namespace(), fmt.Sprintf("failed %q constraint", first.Tag()), err)
	}
	return runpipeerrors.NewValidationError("", err.Error(), err)
}
