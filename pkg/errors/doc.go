// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeParse,
//	    "failed to decode manifest document",
//	    decodeErr,
//	    map[string]interface{}{
//	        "file": path,
//	        "document": ordinal,
//	    },
//	)
package errors
