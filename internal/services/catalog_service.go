package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"giftfinder/internal/apiclient"
	"giftfinder/internal/domain"
	"giftfinder/internal/finder"
)

// CatalogService serves the public store and gift pages. Nothing is cached;
// each call goes to the API.
type CatalogService struct {
	Client *apiclient.Client
}

func NewCatalogService(client *apiclient.Client) *CatalogService {
	return &CatalogService{Client: client}
}

func (s *CatalogService) Stores(ctx context.Context) ([]domain.Store, error) {
	return s.Client.ListStores(ctx)
}

type GiftsPage struct {
	Gifts      []domain.Gift
	Stores     []domain.Store
	Categories []string
}

// Gifts loads the filtered gifts along with the filter choices.
func (s *CatalogService) Gifts(ctx context.Context, f domain.GiftFilters) (GiftsPage, error) {
	var p GiftsPage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		p.Gifts, err = s.Client.ListGifts(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		p.Stores, err = s.Client.ListStores(gctx)
		return err
	})
	g.Go(func() (err error) {
		p.Categories, err = s.Client.ListCategories(gctx)
		return err
	})
	return p, g.Wait()
}

// Choices loads only the store and category lists for the filter form.
func (s *CatalogService) Choices(ctx context.Context) (GiftsPage, error) {
	var p GiftsPage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		p.Stores, err = s.Client.ListStores(gctx)
		return err
	})
	g.Go(func() (err error) {
		p.Categories, err = s.Client.ListCategories(gctx)
		return err
	})
	return p, g.Wait()
}

// Interests returns the API's interest list, or the built-in one when the
// API has none or fails.
func (s *CatalogService) Interests(ctx context.Context) []string {
	list, err := s.Client.ListInterests(ctx)
	if err != nil || len(list) == 0 {
		return append([]string(nil), finder.Interests...)
	}
	return list
}
