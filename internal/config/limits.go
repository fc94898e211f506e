package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxFolderNameLength = 255

	// MaxNoteTitleLength is the maximum length for note titles.
	// Same as folder names for consistency.
	MaxNoteTitleLength = 255

	// MaxUploadBytes is the multipart upload ceiling for media files.
	MaxUploadBytes = 50 << 20

	// SummarizeThresholdChars is the transcript length above which an
	// AI summary is requested during ingestion. Shorter transcripts get
	// the fixed "too short" sentinel instead.
	SummarizeThresholdChars = 1000
)
