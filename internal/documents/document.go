// Package documents implements credit report intake: discovery of PDF
// documents in the input directory and plain text extraction.
package documents

// Document describes one credit report discovered in the input directory.
// PageCount is zero when the page structure could not be read at discovery
// time; extraction surfaces the underlying failure.
type Document struct {
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	PageCount int    `json:"page_count"`
}
