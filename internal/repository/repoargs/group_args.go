package repoargs

type CreateGroup struct {
	Name      string
	MemberIDs []int64
}

type UpdateGroup struct {
	ID   int64
	Name string
}
