// Package credentials holds the client-side credential store: the access
// token, refresh token, and user email that together make up an authenticated
// session. The session controller is the only writer; the HTTP gateway and
// the token watcher are readers.
package credentials

// Storage keys. A credential occupies the first three keys together;
// the selected broker is a separately namespaced value used only by the
// pre-authentication flow.
const (
	KeyAccessToken    = "access_token"
	KeyRefreshToken   = "refresh_token"
	KeyUserEmail      = "user_email"
	KeySelectedBroker = "selected_broker"
)

// Credential is the stored token triple. All three fields are present
// together or absent together; a partial triple is treated as
// "not authenticated".
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserEmail    string `json:"user_email"`
}

// Complete reports whether all three fields are populated.
func (c Credential) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != "" && c.UserEmail != ""
}

// Repo defines the interface for credential storage operations.
type Repo interface {
	// Get retrieves the stored credential. It returns (nil, nil) when no
	// complete credential is stored; a partial triple reads as absent.
	Get() (*Credential, error)

	// Set replaces the stored credential. All three fields are written
	// together; an incomplete credential is rejected.
	Set(cred Credential) error

	// UpdateTokens replaces the access and refresh tokens of an existing
	// credential, leaving the user email untouched. Fails when no
	// credential is stored.
	UpdateTokens(accessToken, refreshToken string) error

	// Clear removes all credential fields together. Clearing an empty
	// store is a no-op.
	Clear() error

	// AccessToken returns the stored access token, or "" when absent.
	AccessToken() string

	// SelectedBroker returns the transient pre-authentication broker
	// selection, or "" when none is set.
	SelectedBroker() string

	// SetSelectedBroker stores the broker selection.
	SetSelectedBroker(id string) error

	// ClearSelectedBroker removes the broker selection.
	ClearSelectedBroker() error
}
