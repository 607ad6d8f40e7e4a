package models

import "github.com/dotcommander/cerror/pkg/restart"

// RecoverableError is implemented by enriched errors that carry structured
// context and remediation hints. The output package renders these fields in
// the JSON error envelope.
type RecoverableError interface {
	error
	ErrorCode() string
	Context() map[string]string
	SuggestedAction() string
}

var _ RecoverableError = (*restart.MalformedHierarchyError)(nil)
