package github

import (
	"regexp"

	errs "github.com/matzehuels/ghfolio/pkg/errors"
)

// validRepo matches repository names: 1-100 alphanumerics, hyphens,
// underscores or dots.
var validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)

// ValidateOwner validates a user or organization login before it is placed
// in an API path.
func ValidateOwner(owner string) error {
	return errs.ValidateUsername(owner)
}

// ValidateRepo validates a repository name taken from a listing.
func ValidateRepo(repo string) error {
	switch {
	case repo == "":
		return errs.New(errs.ErrCodeInvalidInput, "repository name is required")
	case repo == "." || repo == "..":
		return errs.New(errs.ErrCodeInvalidInput, "invalid repository name %q", repo)
	case !validRepo.MatchString(repo):
		return errs.New(errs.ErrCodeInvalidInput, "invalid repository name %q", repo)
	}
	return nil
}

// ValidateRepoRef validates both owner and repo.
func ValidateRepoRef(owner, repo string) error {
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	return ValidateRepo(repo)
}
