package service

import (
	"strings"

	"github.com/GTDGit/shopizi/internal/utils"
)

const (
	msgRequired = "This field is required."
	msgBlank    = "This field may not be blank."
)

// requireString validates a string field of a write. Full writes need every
// required field present; any present field must not be blank.
func requireString(verr *utils.ValidationError, field string, v *string, full bool) {
	if v == nil {
		if full {
			verr.Add(field, msgRequired)
		}
		return
	}
	if strings.TrimSpace(*v) == "" {
		verr.Add(field, msgBlank)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
