package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

const internalDetail = "Internal Server Error"

type detailBody struct {
	Detail string `json:"detail"`
}

// WriteHTTP renders err as {"detail": ...} with the status of its Kind.
// Unclassified errors become a bare 500 so causes never leak to clients.
func WriteHTTP(w http.ResponseWriter, err error) {
	var ae *Error
	status := http.StatusInternalServerError
	detail := internalDetail
	if errors.As(err, &ae) {
		status = Status(ae.Kind)
		if ae.Message != "" && status != http.StatusInternalServerError {
			detail = ae.Message
		}
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(detailBody{Detail: detail})
}
