package whoop

import "context"

type UserService interface {
	GetProfile(ctx context.Context) (*UserProfile, error)
}

type CycleService interface {
	// List returns the cycles matching params. The provider may answer with
	// a bare array or a paginated envelope; both decode to the same slice.
	List(ctx context.Context, params *ListParams) ([]Cycle, error)
}
