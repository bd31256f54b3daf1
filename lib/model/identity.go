package model

import "fmt"

// Identity is a (name, email) pair as it appears in a commit or after mailmap
// canonicalization.
type Identity struct {
	Name  string
	Email string
}

func NewIdentity(name string, email string) Identity {
	return Identity{Name: name, Email: email}
}

func (i Identity) String() string {
	return fmt.Sprintf("%v <%v>", i.Name, i.Email)
}
