// Package endpoint defines the transport capability of the service. Every
// active transport serves the repository over some protocol and reports the
// endpoint descriptors under which an entity is reachable through it.
package endpoint

import (
	"github.com/carlos-schmidt/fa3st-service/internal/common/model"
)

// Endpoint is one active transport. The endpoint information methods never
// fail: a transport that cannot compute a URL returns an empty slice.
type Endpoint interface {
	Start() error
	Stop() error

	AasEndpointInformation(aasID string) []model.Endpoint
	SubmodelEndpointInformation(submodelID string) []model.Endpoint
}

// AggregateAasEndpointInformation collects shell endpoint descriptors from all
// transports, preserving transport registration order, then transport-internal
// order.
func AggregateAasEndpointInformation(endpoints []Endpoint, aasID string) []model.Endpoint {
	var result []model.Endpoint
	for _, e := range endpoints {
		result = append(result, e.AasEndpointInformation(aasID)...)
	}
	return result
}

// AggregateSubmodelEndpointInformation collects submodel endpoint descriptors
// from all transports in the same order.
func AggregateSubmodelEndpointInformation(endpoints []Endpoint, submodelID string) []model.Endpoint {
	var result []model.Endpoint
	for _, e := range endpoints {
		result = append(result, e.SubmodelEndpointInformation(submodelID)...)
	}
	return result
}
