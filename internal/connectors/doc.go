// Package connectors groups the source connector implementations. Each
// subpackage implements driven.Connector for one external system and
// keeps that system's quirks (pagination, rate limits, content
// extraction) entirely internal.
package connectors
