package domain

// Principal is an authenticated identity attached to a chat connection.
type Principal struct {
	Username string
	Color    string
}
