package config

const (
	// MaxDescriptionLength caps the free-text form description sent to the
	// generation provider. The prompt input is a single line in the UI.
	MaxDescriptionLength = 2000

	// MaxProfileNameLength and MinProfileNameLength bound display names.
	MinProfileNameLength = 2
	MaxProfileNameLength = 50

	// MaxSubmissionValueLength caps a single text answer.
	MaxSubmissionValueLength = 10000

	// MaxUploadBytes caps a multipart submission body (all parts together).
	MaxUploadBytes = 20 << 20

	// RecentSubmissionsLimit is the number of submissions shown on the dashboard.
	RecentSubmissionsLimit = 10

	// DefaultSubmissionsPageSize is used when the caller passes no limit.
	DefaultSubmissionsPageSize = 50

	// MaxSubmissionsPageSize bounds the submissions listing.
	MaxSubmissionsPageSize = 200

	// AnonymousSessionDays is the lifetime of an anonymous session token.
	AnonymousSessionDays = 30
)
