/*******************************************************************************
* Copyright (C) 2025 the Eclipse FA³ST Authors
*
* Permission is hereby granted, free of charge, to any person obtaining
* a copy of this software and associated documentation files (the
* "Software"), to deal in the Software without restriction, including
* without limitation the rights to use, copy, modify, merge, publish,
* distribute, sublicense, and/or sell copies of the Software, and to
* permit persons to whom the Software is furnished to do so, subject to
* the following conditions:
*
* The above copyright notice and this permission notice shall be
* included in all copies or substantial portions of the Software.
*
* THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
* EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
* MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
* NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE
* LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION
* OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION
* WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*
* SPDX-License-Identifier: MIT
******************************************************************************/

//nolint:all
package model

// SecurityTypeEnum type of SecurityTypeEnum
type SecurityTypeEnum string

// List of SecurityTypeEnum
//
//nolint:all
const (
	SECURITYTYPE_NONE     SecurityTypeEnum = "NONE"
	SECURITYTYPE_RFC_TLSA SecurityTypeEnum = "RFC_TLSA"
	SECURITYTYPE_W3C_DID  SecurityTypeEnum = "W3C_DID"
)

// SecurityAttributeObject describes one security attribute of a protocol
// endpoint. Empty key and value together with type NONE denote "no security".
type SecurityAttributeObject struct {
	Type SecurityTypeEnum `json:"type"`

	Key string `json:"key"`

	Value string `json:"value"`
}

// ProtocolInformation describes how an endpoint is reached over one protocol.
type ProtocolInformation struct {
	Href string `json:"href"`

	EndpointProtocol string `json:"endpointProtocol,omitempty"`

	EndpointProtocolVersion []string `json:"endpointProtocolVersion,omitempty"`

	Subprotocol string `json:"subprotocol,omitempty"`

	SubprotocolBody string `json:"subprotocolBody,omitempty"`

	SubprotocolBodyEncoding string `json:"subprotocolBodyEncoding,omitempty"`

	SecurityAttributes []SecurityAttributeObject `json:"securityAttributes,omitempty"`
}

// Endpoint describes one reachable interface of an entity.
type Endpoint struct {
	Interface string `json:"interface"`

	ProtocolInformation ProtocolInformation `json:"protocolInformation"`
}

// AssertEndpointRequired checks if the required fields are not zero-ed
func AssertEndpointRequired(obj Endpoint) error {
	elements := map[string]interface{}{
		"interface": obj.Interface,
		"href":      obj.ProtocolInformation.Href,
	}
	for name, el := range elements {
		if isZero := IsZeroValue(el); isZero {
			return &RequiredError{Field: name}
		}
	}
	return nil
}
