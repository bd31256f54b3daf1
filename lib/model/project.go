package model

type Project struct {
	ID         ID
	Name       string
	URLPath    string
	GithubName string

	// RepoDir is where the repository lives on disk. RepoURL, if set, is used to
	// clone it when RepoDir does not exist yet.
	RepoDir string
	RepoURL string
	Branch  string
}

// HeadRef is the revision used for not yet released history.
func (p *Project) HeadRef() string {
	if p.Branch == "" {
		return "HEAD"
	}
	return p.Branch
}
