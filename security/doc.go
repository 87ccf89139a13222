// Package security builds TLS client settings for outbound connections,
// currently the OTLP telemetry exporters.
//
//	tlsCfg, err := security.TLSConfig{CAFile: "/etc/otel/ca.pem"}.Build()
//
// A zero TLSConfig builds to nil, leaving the exporter's defaults in place.
package security
