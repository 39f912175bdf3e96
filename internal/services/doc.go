// Package services provides the shared error taxonomy and context plumbing
// used by the pipeline stages and external collaborator clients.
package services
