package errors

import "net/http"

var (
	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidBoundingBox = New(
		"INVALID_BOUNDING_BOX",
		"Invalid bounding box",
		http.StatusBadRequest,
	)

	ErrUnknownSource = New(
		"UNKNOWN_SOURCE",
		"Unknown amenity source",
		http.StatusNotFound,
	)

	ErrUnknownScenario = New(
		"UNKNOWN_SCENARIO",
		"Unknown reachability scenario",
		http.StatusNotFound,
	)

	ErrSessionNotFound = New(
		"SESSION_NOT_FOUND",
		"Session not found or expired",
		http.StatusNotFound,
	)

	ErrSubmissionNotFound = New(
		"SUBMISSION_NOT_FOUND",
		"Submission not found",
		http.StatusNotFound,
	)

	ErrArchiveDisabled = New(
		"ARCHIVE_DISABLED",
		"Submission archive is not configured",
		http.StatusServiceUnavailable,
	)

	ErrMissingLocation = New(
		"MISSING_LOCATION",
		"Please click on the survey map to fill lon/lat before submitting.",
		http.StatusUnprocessableEntity,
	)

	ErrTooManySelections = New(
		"TOO_MANY_SELECTIONS",
		"Too many options selected",
		http.StatusUnprocessableEntity,
	)

	ErrSubmissionFailed = New(
		"SUBMISSION_FAILED",
		"Error: Failed to fetch",
		http.StatusBadGateway,
	)

	ErrUpstreamError = New(
		"UPSTREAM_ERROR",
		"Feature service request failed",
		http.StatusBadGateway,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
