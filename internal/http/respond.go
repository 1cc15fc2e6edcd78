package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/nkaroui/soapdir/internal/soap"
)

// writeJSON writes JSON response with status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError sends an error message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// faultBody mirrors the fault envelope shape of the original contract:
// {"Fault": {"Code": {"Value": ...}, "Reason": {"Text": ...}}}.
type faultBody struct {
	Fault faultDetail `json:"Fault"`
}

type faultDetail struct {
	Code   faultCode   `json:"Code"`
	Reason faultReason `json:"Reason"`
}

type faultCode struct {
	Value string `json:"Value"`
}

type faultReason struct {
	Text string `json:"Text"`
}

// writeFault encodes a fault envelope. Client faults map to 400, Server
// faults to 500.
func writeFault(w http.ResponseWriter, f *soap.Fault) {
	status := http.StatusInternalServerError
	if f.Code == soap.FaultCodeClient {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, faultBody{
		Fault: faultDetail{
			Code:   faultCode{Value: string(f.Code)},
			Reason: faultReason{Text: f.Reason},
		},
	})
}
