// Package cmd hosts the linkrot command line.
//
// Architecture overview:
//   - Store client: internal/pinboard authenticates with one posts/update call, then lists, adds and deletes
//     bookmarks keyed by URL. Calls are paced by a per-host token bucket (internal/policy/ratelimit).
//   - Link checker: internal/checker runs a Colly probe per link (internal/fetcher/colly) with four in flight via an
//     errgroup, and reassembles results in input order. Only HTTP 200 is live.
//   - Remediation: internal/remediate resolves each dead link through internal/wayback, asks the injected
//     confirmer (internal/prompt) and performs add-then-delete or delete. Failures are recorded per bookmark.
//   - Plumbing: internal/config (Viper) merges defaults, an optional file, LINKROT_* env and flags; zap logs go to
//     stderr; progress events feed a terminal counter plus a batching hub with Prometheus and log sinks; an optional
//     chi listener exposes /metrics and /healthz while the run lasts.
package cmd
