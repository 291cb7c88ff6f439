// Package errors defines the error types shared by genflow packages.
//
// Construction arguments outside an operator's domain are reported as
// *ValidationError, which unwraps to ErrInvalidArgument. Failures of
// external sources (Redis round trips, for example) are reported as
// *OperationError wrapping the underlying cause, so errors.Is keeps working
// on the original error.
package errors
