package authz

import (
	"io"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/datagrid-security/saml-authz-api/authz"
	"github.com/datagrid-security/saml-authz-api/saml/xmlbind"
	"github.com/datagrid-security/saml-authz-api/soap"
	"github.com/datagrid-security/saml-authz-api/util"
)

// Routes creates a new Chi router with the SOAP endpoint for the
// authorization decision service
func Routes(service *authz.Service) *chi.Mux {
	router := chi.NewRouter()
	router.Post("/", HandleQuery(service))
	return router
}

// HandleQuery answers a SOAP-framed AuthzDecisionQuery with a SOAP-framed
// SAML response.
//
// A malformed envelope or query is a client fault; a failure while
// constructing or serializing the response is a server fault. A decision
// provider failure is NOT a fault here: the service reports it inside the
// SAML response with a Responder status.
func HandleQuery(service *authz.Service) http.HandlerFunc {
	// Use a closure to inject dependencies
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			util.SOAPFault(w, soap.FaultClient, err)
			return
		}

		envelope, err := soap.ParseEnvelope(body)
		if err != nil {
			util.SOAPFault(w, soap.FaultClient, err)
			return
		}

		payload, err := envelope.Payload()
		if err != nil {
			util.SOAPFault(w, soap.FaultClient, err)
			return
		}

		query, err := xmlbind.ParseAuthzDecisionQuery(payload)
		if err != nil {
			code := soap.FaultServer
			if xmlbind.IsStructural(err) {
				code = soap.FaultClient
			}
			util.SOAPFault(w, code, err)
			return
		}

		response, err := service.HandleQuery(r.Context(), &query)
		if err != nil {
			util.SOAPFault(w, soap.FaultServer, err)
			return
		}

		responseElem, err := xmlbind.CreateResponse(*response, xmlbind.DefaultRegistry())
		if err != nil {
			util.SOAPFault(w, soap.FaultServer, err)
			return
		}

		responseEnvelope := soap.NewEnvelope()
		responseEnvelope.AttachPayload(responseElem)
		data, err := responseEnvelope.Serialize()
		if err != nil {
			util.SOAPFault(w, soap.FaultServer, err)
			return
		}

		w.Header().Set("Content-Type", soap.ContentType)
		w.Write(data)
	}
}
