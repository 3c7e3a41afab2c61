package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// RespondWithJSON writes payload with the given status.
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError writes an error envelope and logs the failure. devErr is the
// underlying cause; it is logged but never written to the client by this
// helper (callers decide what detail goes into body).
func RespondError(
	w http.ResponseWriter,
	status int,
	publicMessage string,
	body any,
	devErrs ...error,
) {
	RespondWithJSON(w, status, body)

	fields := logrus.Fields{"status": status}
	if len(devErrs) > 0 && devErrs[0] != nil {
		fields["error"] = devErrs[0].Error()
	}
	if status >= http.StatusInternalServerError {
		Logger.WithFields(fields).Error(publicMessage)
	} else {
		Logger.WithFields(fields).Warn(publicMessage)
	}
}
