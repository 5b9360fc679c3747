// Package cursor implements the opaque pagination tokens.
//
// TOKEN FORMAT:
// A cursor is base64url(JSON) of a Position. Callers must treat it as opaque:
// the only valid operations are "pass back the one you were given" and
// "pass the empty string to start over".
//
//	{"s":"genre:drama","a":42}          next page starts below seq 42
//	{"s":"all","a":7,"d":true}          iteration finished
//
// SCOPE BINDING:
// Each cursor records the ordering and filter it was minted for. Reusing a
// "genre:drama" cursor on an unfiltered listing would silently skip or repeat
// rows, so Decode rejects any cursor whose scope does not match the request.
package cursor

import (
	"encoding/base64"
	"encoding/json"

	"github.com/sakif/shelf/internal/apperror"
)

// Scope names an ordering plus its filter.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeFeatured Scope = "featured"
)

func ScopeGenre(value string) Scope { return Scope("genre:" + value) }
func ScopeOwner(userID string) Scope { return Scope("owner:" + userID) }

// Position is the decoded form of a cursor.
//
// After is the seq of the last row already delivered; zero means "start at
// the newest row". Done marks a finished iteration.
type Position struct {
	Scope Scope `json:"s"`
	After int64 `json:"a,omitempty"`
	Done  bool  `json:"d,omitempty"`
}

// Start is the position an empty cursor decodes to.
func Start(scope Scope) Position {
	return Position{Scope: scope}
}

// Encode serialises p into an opaque token.
func Encode(p Position) string {
	// Marshal of a struct with string/int/bool fields cannot fail.
	b, _ := json.Marshal(p)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode parses token and checks that it belongs to scope.
// An empty token is the start of the iteration.
func Decode(token string, scope Scope) (Position, error) {
	if token == "" {
		return Start(scope), nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Position{}, invalid()
	}

	var p Position
	if err := json.Unmarshal(raw, &p); err != nil {
		return Position{}, invalid()
	}
	if p.Scope != scope {
		return Position{}, apperror.ValidationFailed("cursor", "cursor was issued for a different listing")
	}
	if p.After < 0 {
		return Position{}, invalid()
	}

	return p, nil
}

func invalid() *apperror.AppError {
	return apperror.ValidationFailed("cursor", "invalid cursor")
}
