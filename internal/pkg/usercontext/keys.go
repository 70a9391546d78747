package usercontext

// Locals key holding the UserContext of a request
const (
	KeyUserContext = "USER_CONTEXT"
)
