package util

import (
	"fmt"
	"net/http"

	"github.com/datagrid-security/saml-authz-api/soap"
)

// SOAPFault writes a SOAP 1.1 fault envelope for the XML surface.
// Per SOAP 1.1 over HTTP, faults are carried on a 500 status; the fault code
// distinguishes client-input errors from service-side failures.
func SOAPFault(w http.ResponseWriter, code soap.FaultCode, originalError error) {
	envelope := soap.NewFault(code, fmt.Sprint(originalError))

	data, err := envelope.Serialize()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", soap.ContentType)
	w.WriteHeader(http.StatusInternalServerError)
	w.Write(data)
}
