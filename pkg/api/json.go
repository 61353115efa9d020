package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/N1K0232/GlowingStoreApi/pkg/openapi"
	"github.com/sirupsen/logrus"
)

// Time is serialized in UTC as "2006-01-02T15:04:05Z".
type Time time.Time

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(openapi.DateTimeLayout))
}

// UnmarshalJSON implements json.Unmarshaler. Any RFC 3339 value is accepted.
func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}

	*t = Time(parsed.UTC())

	return nil
}

func writeJSON(log logrus.FieldLogger, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("Failed to encode JSON response")
	}
}
