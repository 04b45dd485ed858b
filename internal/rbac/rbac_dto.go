package rbac

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type EnforceRequest struct {
	Role     string
	Resource string
	Action   string
}
