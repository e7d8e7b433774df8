/* models.go
 * This file contains the structs and error kinds that are shared between sub packages
 */

package shared

import "errors"

// User identifies the acting user for an engine call. The engine never keeps
// ambient "current user" state; callers pass this in explicitly.
type User struct {
	UserID   string
	FullName string
	Email    string
}

// Error kinds surfaced by the engine. Storage failures are wrapped with %w
// and are anything that is not one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)
