package model

// Chunk is the final output unit of the chunking pipeline.
// A chunk is created once and never mutated afterwards.
type Chunk struct {
	Text       string // Trimmed text, at least MinChunkWords words
	ID         string // Fingerprint of Text, independent of position
	Index      int    // 0-based position within the source document
	Total      int    // Number of chunks derived from the same document
	SourceFile string // Originating document name
}

// ChunkRecord is the persisted form of a chunk
type ChunkRecord struct {
	Text     string        `json:"text"`
	ChunkID  string        `json:"chunk_id"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata holds the positional metadata attached to every record
type ChunkMetadata struct {
	SourceFile  string `json:"source_file"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// Record converts the chunk to its persisted form
func (c Chunk) Record() ChunkRecord {
	return ChunkRecord{
		Text:    c.Text,
		ChunkID: c.ID,
		Metadata: ChunkMetadata{
			SourceFile:  c.SourceFile,
			ChunkIndex:  c.Index,
			TotalChunks: c.Total,
		},
	}
}

// Records converts a document's chunks to records, preserving order.
// A nil or empty input yields an empty, non-nil slice so it serializes as [].
func Records(chunks []Chunk) []ChunkRecord {
	records := make([]ChunkRecord, 0, len(chunks))
	for _, c := range chunks {
		records = append(records, c.Record())
	}
	return records
}

// Document is a source document handed to the chunk stage
type Document struct {
	Name string // File name, used as source_file
	Path string // Full path on disk
	Text string // Extracted text
}

// DocumentStatus classifies the outcome of processing one document
type DocumentStatus string

const (
	StatusExtracted   DocumentStatus = "extracted"
	StatusChunked     DocumentStatus = "chunked"
	StatusEmpty       DocumentStatus = "empty"
	StatusUnsupported DocumentStatus = "unsupported"
	StatusFailed      DocumentStatus = "failed"
)
