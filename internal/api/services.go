package api

import (
	"github.com/ideavaultapp/ideavault-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Instance *service.InstanceService
	Auth     *service.AuthService
	Session  *service.SessionService
	Profile  *service.ProfileService
	Idea     *service.IdeaService
	Tag      *service.TagService
	Search   *service.SearchService
}
