package whoop

import (
	"context"
	"net/http"
)

type userService struct {
	client *Client
}

func (s *userService) GetProfile(ctx context.Context) (*UserProfile, error) {
	const route = "/user/profile/basic"

	var profile UserProfile
	if err := s.client.do(ctx, http.MethodGet, route, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
