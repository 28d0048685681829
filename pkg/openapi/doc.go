// Package openapi describes the record set wire format and the HTTP surface
// as an OpenAPI 3 document. The document is assembled as plain JSON and loaded
// through kin-openapi so references are resolved the same way as for any
// external document, which keeps ValidateRecordSet honest.
package openapi
