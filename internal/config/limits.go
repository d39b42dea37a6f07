package config

const (
	// MaxWorkspaceNameLength is the maximum length for workspace names.
	MaxWorkspaceNameLength = 255

	// MaxFolderNameLength is the maximum length for folder names.
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for file names.
	// Same as folder names for consistency.
	MaxFileNameLength = 255

	// MaxTaskTitleLength is the maximum length for task titles.
	MaxTaskTitleLength = 255

	// MaxCommentLength bounds task comment bodies.
	MaxCommentLength = 10000

	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 8

	// DefaultMaxUploadBytes caps a single direct upload (5 GiB, the S3 single-PUT limit).
	DefaultMaxUploadBytes = 5 << 30

	// MaxBriefingFileBytes caps files sent to upload-text and transcribe.
	MaxBriefingFileBytes = 25 << 20

	// MaxBriefingMessageLength bounds one chat answer.
	MaxBriefingMessageLength = 10000

	// MaxBriefingMaterialChars bounds the combined text of briefing materials.
	MaxBriefingMaterialChars = 200000

	// MaxBriefDocumentLength bounds a generated or edited brief.
	MaxBriefDocumentLength = 100000
)
