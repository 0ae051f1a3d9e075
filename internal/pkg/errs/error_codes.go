/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrInvalidJSONFormat indicates that an inbound frame or request body was not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Registration and Voting Business Logic Errors
const (
	// ErrEmptyUsername indicates that a registration attempt carried an empty (or whitespace-only) username.
	ErrEmptyUsername = 2101

	// ErrUserNotFound indicates that the acting connection has no registered user record.
	ErrUserNotFound = 2102

	// ErrEmptyChoice indicates that a submitted choice was empty after trimming.
	ErrEmptyChoice = 2201

	// ErrChoiceTooLong indicates that a submitted choice exceeded the maximum allowed length.
	ErrChoiceTooLong = 2202

	// ErrInvalidAppearance indicates that an appearance update carried malformed or oversized values.
	ErrInvalidAppearance = 2301
)

// 3xxx: Admin and Session Errors
const (
	// ErrSessionKicked indicates that the current client connection has been terminated by an admin.
	ErrSessionKicked = 3004

	// ErrNotAdmin indicates that a privileged action was attempted by a non-admin user.
	ErrNotAdmin = 3101

	// ErrTargetNotFound indicates that the named target of an admin action is not registered.
	ErrTargetNotFound = 3102

	// ErrSelfTransfer indicates that the admin attempted to transfer admin rights to themselves.
	ErrSelfTransfer = 3103

	// ErrAlreadyAdmin indicates that the transfer target already holds admin rights.
	ErrAlreadyAdmin = 3104

	// ErrSelfRemoval indicates that the admin attempted to remove themselves via the admin panel.
	ErrSelfRemoval = 3105

	// ErrSoleUserRemoval indicates an attempt to remove the admin while they are the only registered user.
	ErrSoleUserRemoval = 3106
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrPersistFailure indicates that writing the room config file to disk failed.
	ErrPersistFailure = 5001
)
