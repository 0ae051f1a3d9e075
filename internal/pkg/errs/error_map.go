/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrInvalidJSONFormat: {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Registration and Voting Business Logic Errors
	ErrEmptyUsername:     {Code: ErrEmptyUsername, Message: "Username cannot be empty."},
	ErrUserNotFound:      {Code: ErrUserNotFound, Message: "Please register first."},
	ErrEmptyChoice:       {Code: ErrEmptyChoice, Message: "Please enter a character name."},
	ErrChoiceTooLong:     {Code: ErrChoiceTooLong, Message: "Character name cannot exceed %d characters."},
	ErrInvalidAppearance: {Code: ErrInvalidAppearance, Message: "Invalid appearance settings."},

	// 3xxx: Admin and Session Errors
	ErrSessionKicked:   {Code: ErrSessionKicked, Message: "You were removed from the room."},
	ErrNotAdmin:        {Code: ErrNotAdmin, Message: "Only the current admin can perform this action."},
	ErrTargetNotFound:  {Code: ErrTargetNotFound, Message: "Target user not found."},
	ErrSelfTransfer:    {Code: ErrSelfTransfer, Message: "You cannot make yourself admin again."},
	ErrAlreadyAdmin:    {Code: ErrAlreadyAdmin, Message: "%s is already the admin."},
	ErrSelfRemoval:     {Code: ErrSelfRemoval, Message: "Admin cannot remove themselves using this panel."},
	ErrSoleUserRemoval: {Code: ErrSoleUserRemoval, Message: "Cannot remove the only user while they are the admin."},

	// 5xxx: Internal System Errors
	ErrUnknown:        {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrPersistFailure: {Code: ErrPersistFailure, Message: "Settings could not be saved.", Status: http.StatusInternalServerError},
}
