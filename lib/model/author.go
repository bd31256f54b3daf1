package model

// Author is a canonical identity stored in the database. Two raw spellings that
// canonicalize to the same Identity share one Author.
type Author struct {
	ID      ID
	Name    string
	Email   string
	Visible bool
}

func (a *Author) Identity() Identity {
	return Identity{Name: a.Name, Email: a.Email}
}
