// Package validation holds struct validation for API requests and the file
// checks run before the dataset is loaded or an export is written.
package validation
