package repoargs

type RepositoryName string

const (
	UserRepoName    RepositoryName = "user"
	GroupRepoName   RepositoryName = "group"
	ExpenseRepoName RepositoryName = "expense"
)

// Page - окно offset/limit по списку, упорядоченному по id.
type Page struct {
	Offset uint
	Limit  uint
}
