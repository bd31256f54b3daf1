package model

// Commit attributes a version control object id to one release and one author.
// Sha is unique across the whole store.
type Commit struct {
	Sha       string
	ReleaseID ID
	AuthorID  ID
}
