package repoargs

type CreateUser struct {
	Name  string
	Email string
}

type UpdateUser struct {
	ID    int64
	Name  string
	Email string
}
