// Package app assembles the TradePulse service.
//
// Application owns the dependency graph: configuration, the structured
// logger, the country mapping bridge, the SQLite store, the run
// ledger, the ingestion pipeline and the chi HTTP router. It also owns
// the process lifecycle, starting the pipeline workers and the HTTP
// server together and draining both on shutdown so no run is left in
// the running state by an orderly exit.
package app
