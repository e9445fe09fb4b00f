// Package linkrot defines the shared types, collaborator interfaces and error
// taxonomy used by the bookmark audit: the store client, link checker,
// snapshot resolver and remediation orchestrator all speak in these terms.
package linkrot
