package entity

import "time"

// Todo is a single to-do item. Username is a plain lookup key into users,
// not an enforced foreign key.
type Todo struct {
	ID        string    `json:"id"`
	Todo      string    `json:"todo"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnedBy reports whether username may mutate the todo.
func (t *Todo) OwnedBy(username string) bool {
	return username != "" && t.Username == username
}
