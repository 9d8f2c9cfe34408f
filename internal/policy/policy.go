// Package policy collects cross-cutting retention and lifetime knobs in one
// place so they are auditable without chasing call sites.
package policy

import "time"

// TemplateCacheTTL bounds staleness of the cached requirement-template
// catalog.
var TemplateCacheTTL = 5 * time.Minute

// DefaultDownloadURLTTL is the lifetime of issued attachment download URLs
// when configuration does not override it.
var DefaultDownloadURLTTL = 5 * time.Minute

// AuditQueueDepth sizes the in-process audit event channel between the
// request path and the background sink worker.
var AuditQueueDepth = 256
