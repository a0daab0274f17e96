// Package internal documents the map generator internals.
//
// The internal tree is organized by responsibility:
// - geo, staticmap: projection math and provider image URL builders
// - geocoding: address lookup against Nominatim with a result cache
// - dialog, prefs: the settings form, its validation and remembered values
// - generator, host: the Create flow and the host it drives (host/terminal for the CLI)
// - storage: Postgres and Valkey backends for preferences and the geocoding cache
// - config, metrics, telemetry, validation: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
