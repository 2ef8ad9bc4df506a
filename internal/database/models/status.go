package models

// Status is the outcome recorded on an audit row.
type Status string

const (
	// StatusSuccess means the lookup or file materialization completed.
	StatusSuccess Status = "success"
	// StatusFailed means a caller-correctable condition: bad input or missing output.
	StatusFailed Status = "failed"
	// StatusError means the extractor failed or something unexpected happened.
	StatusError Status = "error"
)
