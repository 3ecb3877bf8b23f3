package gcal

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/tourenq/weekcal/internal/apperr"
	"github.com/tourenq/weekcal/internal/config"
)

// validate is shared and concurrency-safe; building it is not cheap, so it
// lives at package scope.
var validate = validator.New()

// ValidateEnvelope decodes and structurally validates the raw response body
// before any record reaches the normalizer. A structural failure yields an
// InvalidData taxonomy error; an upstream error object embedded in an
// otherwise well-formed payload is NOT a validation failure here; it is
// returned inside the envelope for the caller to classify.
//
// Stage-one defaulting happens here so downstream code can assume shape
// completeness: missing status becomes confirmed and missing attendee
// response statuses become needsAction.
func ValidateEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidData, config.ErrEnvelopeDecode, err)
	}

	if err := validate.Struct(&env); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidData, config.ErrEnvelopeShape, err)
	}

	for i := range env.Items {
		item := &env.Items[i]

		if err := checkTimeShape(item.Start); err != nil {
			return nil, apperr.Wrap(apperr.KindInvalidData,
				fmt.Sprintf("%s: event %q start", config.ErrEnvelopeShape, item.ID), err)
		}
		if err := checkTimeShape(item.End); err != nil {
			return nil, apperr.Wrap(apperr.KindInvalidData,
				fmt.Sprintf("%s: event %q end", config.ErrEnvelopeShape, item.ID), err)
		}

		if item.Status == "" {
			item.Status = config.StatusConfirmed
		}
		for j := range item.Attendees {
			if item.Attendees[j].ResponseStatus == "" {
				item.Attendees[j].ResponseStatus = config.ResponseNeedsAction
			}
		}
	}

	return &env, nil
}

// checkTimeShape enforces the date/dateTime mutual exclusion. The validator
// tags cannot express cross-field constraints cleanly, so this check is
// explicit.
func checkTimeShape(t RawTime) error {
	switch {
	case t.Date == "" && t.DateTime == "":
		return fmt.Errorf("neither date nor dateTime present")
	case t.Date != "" && t.DateTime != "":
		return fmt.Errorf("date and dateTime are mutually exclusive")
	default:
		return nil
	}
}
