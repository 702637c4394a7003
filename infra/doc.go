// Package infra contains technical adapters such as the SQL store, MQTT
// and Redis alert transports and metrics exporters. These packages should
// depend only on the interfaces defined in the core packages.
package infra
