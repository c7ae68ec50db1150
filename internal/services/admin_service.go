package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"giftfinder/internal/domain"
)

// AdminService backs the admin screens. Every call needs the browser's
// token; callers treat any error as a reason to sign in again.
type AdminService struct {
	Auth *AuthService
}

func NewAdminService(auth *AuthService) *AdminService {
	return &AdminService{Auth: auth}
}

func (s *AdminService) Stats(ctx context.Context, sid string) (domain.Stats, error) {
	cl, err := s.Auth.bound(ctx, sid)
	if err != nil {
		return domain.Stats{}, err
	}
	return cl.AdminStats(ctx)
}

func (s *AdminService) Stores(ctx context.Context, sid string) ([]domain.Store, error) {
	cl, err := s.Auth.bound(ctx, sid)
	if err != nil {
		return nil, err
	}
	return cl.AdminListStores(ctx)
}

type GiftsScreen struct {
	Gifts      []domain.Gift
	Stores     []domain.Store
	Categories []string
}

// GiftsScreen loads gifts and their reference data concurrently.
func (s *AdminService) GiftsScreen(ctx context.Context, sid string) (GiftsScreen, error) {
	cl, err := s.Auth.bound(ctx, sid)
	if err != nil {
		return GiftsScreen{}, err
	}
	var out GiftsScreen
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Gifts, err = cl.AdminListGifts(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Stores, err = cl.AdminListStores(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Categories, err = cl.ListCategories(gctx)
		return err
	})
	return out, g.Wait()
}

// SaveStore creates the store when id is 0 and updates it otherwise.
func (s *AdminService) SaveStore(ctx context.Context, sid string, id int64, st domain.Store) (domain.Store, error) {
	cl, err := s.Auth.bound(ctx, sid)
	if err != nil {
		return domain.Store{}, err
	}
	if id == 0 {
		return cl.AdminCreateStore(ctx, st)
	}
	return cl.AdminUpdateStore(ctx, id, st)
}

func (s *AdminService) DeleteStore(ctx context.Context, sid string, id int64) error {
	cl, err := s.Auth.bound(ctx, sid)
	if err != nil {
		return err
	}
	return cl.AdminDeleteStore(ctx, id)
}

// SaveGift creates the gift when id is 0 and updates it otherwise.
func (s *AdminService) SaveGift(ctx context.Context, sid string, id int64, g domain.Gift) (domain.Gift, error) {
	cl, err := s.Auth.bound(ctx, sid)
	if err != nil {
		return domain.Gift{}, err
	}
	if g.Interests == nil {
		g.Interests = []string{}
	}
	if id == 0 {
		return cl.AdminCreateGift(ctx, g)
	}
	return cl.AdminUpdateGift(ctx, id, g)
}

func (s *AdminService) DeleteGift(ctx context.Context, sid string, id int64) error {
	cl, err := s.Auth.bound(ctx, sid)
	if err != nil {
		return err
	}
	return cl.AdminDeleteGift(ctx, id)
}
